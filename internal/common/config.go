package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Engine      EngineConfig     `toml:"engine"`
	Catalog     CatalogConfig    `toml:"catalog"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Scheduler   SchedulerConfig  `toml:"scheduler"`
	Evaluation  EvaluationConfig `toml:"evaluation"`
	Report      ReportConfig     `toml:"report"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Claude      ClaudeConfig     `toml:"claude"`
	LLM         LLMConfig        `toml:"llm"`
}

// Generator names
const (
	GeneratorTemplate = "template"
	GeneratorLLM      = "llm"
)

// EngineConfig controls the recommendation pipeline
type EngineConfig struct {
	WindowDays          int    `toml:"window_days"`          // Default analysis window
	AllowedWindows      []int  `toml:"allowed_windows"`      // Windows accepted by the insights service
	RecommendationLimit int    `toml:"recommendation_limit"` // Education items per run
	Generator           string `toml:"generator"`            // "template" or "llm"
	ToneCheck           bool   `toml:"tone_check"`           // Reject results containing shaming language
	IncludeOffers       bool   `toml:"include_offers"`       // Attach eligible partner offers
}

// CatalogConfig points at the content catalog
type CatalogConfig struct {
	Path string `toml:"path"` // Empty uses the embedded catalog
}

// Snapshot sources
const (
	SourceBadger = "badger"
	SourceMongo  = "mongo"
)

type StorageConfig struct {
	Source string       `toml:"source"` // Where snapshots are read from: "badger" or "mongo"
	Badger BadgerConfig `toml:"badger"`
	Mongo  MongoConfig  `toml:"mongo"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// MongoConfig locates an external snapshot source
type MongoConfig struct {
	URI                    string `toml:"uri"`
	Database               string `toml:"database"`
	AccountsCollection     string `toml:"accounts_collection"`
	TransactionsCollection string `toml:"transactions_collection"`
	Timeout                string `toml:"timeout"` // Connect and query timeout, e.g. "10s"
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// SchedulerConfig controls the periodic insight refresh
type SchedulerConfig struct {
	Enabled    bool   `toml:"enabled"`
	Schedule   string `toml:"schedule"`    // 5-field cron expression
	WindowDays []int  `toml:"window_days"` // Windows refreshed on each run
}

// EvaluationConfig controls the batch evaluation harness
type EvaluationConfig struct {
	Concurrency int    `toml:"concurrency"` // Worker pool size
	OutputDir   string `toml:"output_dir"`
}

// ReportConfig controls report export
type ReportConfig struct {
	OutputDir string `toml:"output_dir"`
	Format    string `toml:"format"` // "md", "html" or "pdf"
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`    // Request timeout as duration string (default: "60s")
	RateLimit   string  `toml:"rate_limit"` // Minimum interval between requests (default: "4s" for 15 RPM)
	Temperature float32 `toml:"temperature"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	RateLimit   string  `toml:"rate_limit"`
	Temperature float32 `toml:"temperature"`
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig selects the provider used by the llm generator
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"`
	MaxRetries      int         `toml:"max_retries"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Engine: EngineConfig{
			WindowDays:          30,
			AllowedWindows:      []int{30, 180},
			RecommendationLimit: 3,
			Generator:           GeneratorTemplate,
			ToneCheck:           true,
			IncludeOffers:       true,
		},
		Storage: StorageConfig{
			Source: SourceBadger,
			Badger: BadgerConfig{
				Path: "./data",
			},
			Mongo: MongoConfig{
				Database:               "spendsense",
				AccountsCollection:     "accounts",
				TransactionsCollection: "transactions",
				Timeout:                "10s",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Scheduler: SchedulerConfig{
			Enabled:    false,
			Schedule:   "0 2 * * *", // Nightly at 02:00
			WindowDays: []int{30, 180},
		},
		Evaluation: EvaluationConfig{
			Concurrency: 4,
			OutputDir:   "./reports",
		},
		Report: ReportConfig{
			OutputDir: "./reports",
			Format:    "html",
		},
		Gemini: GeminiConfig{
			Model:       "gemini-3-flash-preview",
			Timeout:     "60s",
			RateLimit:   "4s",
			Temperature: 0.3,
		},
		Claude: ClaudeConfig{
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   1024,
			Timeout:     "60s",
			RateLimit:   "1s",
			Temperature: 0.3,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderClaude,
			MaxRetries:      3,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env.
// Later files override earlier files. CLI flags are applied separately via ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SPENDSENSE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Engine configuration
	if window := os.Getenv("SPENDSENSE_WINDOW_DAYS"); window != "" {
		if w, err := strconv.Atoi(window); err == nil {
			config.Engine.WindowDays = w
		}
	}
	if windows := os.Getenv("SPENDSENSE_ALLOWED_WINDOWS"); windows != "" {
		if parsed := parseIntList(windows); len(parsed) > 0 {
			config.Engine.AllowedWindows = parsed
		}
	}
	if generator := os.Getenv("SPENDSENSE_GENERATOR"); generator != "" {
		config.Engine.Generator = generator
	}
	if toneCheck := os.Getenv("SPENDSENSE_TONE_CHECK"); toneCheck != "" {
		if t, err := strconv.ParseBool(toneCheck); err == nil {
			config.Engine.ToneCheck = t
		}
	}
	if catalogPath := os.Getenv("SPENDSENSE_CATALOG_PATH"); catalogPath != "" {
		config.Catalog.Path = catalogPath
	}

	// Storage configuration
	if source := os.Getenv("SPENDSENSE_STORAGE_SOURCE"); source != "" {
		config.Storage.Source = source
	}
	if badgerPath := os.Getenv("SPENDSENSE_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if mongoURI := os.Getenv("SPENDSENSE_MONGO_URI"); mongoURI != "" {
		config.Storage.Mongo.URI = mongoURI
	}
	if mongoDB := os.Getenv("SPENDSENSE_MONGO_DATABASE"); mongoDB != "" {
		config.Storage.Mongo.Database = mongoDB
	}

	// Logging configuration
	if level := os.Getenv("SPENDSENSE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("SPENDSENSE_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Scheduler configuration
	if schedule := os.Getenv("SPENDSENSE_SCHEDULE"); schedule != "" {
		config.Scheduler.Schedule = schedule
	}

	// LLM configuration
	if provider := os.Getenv("SPENDSENSE_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
	if key := os.Getenv("SPENDSENSE_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("SPENDSENSE_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	} else if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, windowDays int, generator string, catalogPath string) {
	if windowDays > 0 {
		config.Engine.WindowDays = windowDays
	}
	if generator != "" {
		config.Engine.Generator = generator
	}
	if catalogPath != "" {
		config.Catalog.Path = catalogPath
	}
}

// Validate checks settings that would otherwise fail later at runtime
func (c *Config) Validate() error {
	if c.Engine.WindowDays <= 0 {
		return fmt.Errorf("engine.window_days must be positive, got %d", c.Engine.WindowDays)
	}
	for _, w := range c.Engine.AllowedWindows {
		if w <= 0 {
			return fmt.Errorf("engine.allowed_windows must be positive, got %d", w)
		}
	}
	switch c.Engine.Generator {
	case GeneratorTemplate, GeneratorLLM:
	default:
		return fmt.Errorf("engine.generator must be %q or %q, got %q", GeneratorTemplate, GeneratorLLM, c.Engine.Generator)
	}
	switch c.Storage.Source {
	case SourceBadger, SourceMongo:
	default:
		return fmt.Errorf("storage.source must be %q or %q, got %q", SourceBadger, SourceMongo, c.Storage.Source)
	}
	if c.Scheduler.Enabled {
		if err := ValidateSchedule(c.Scheduler.Schedule); err != nil {
			return fmt.Errorf("scheduler.schedule: %w", err)
		}
	}
	return nil
}

// IsWindowAllowed reports whether the window is in the allowed list
func (c *Config) IsWindowAllowed(windowDays int) bool {
	for _, w := range c.Engine.AllowedWindows {
		if w == windowDays {
			return true
		}
	}
	return false
}

// ResolveAPIKey returns the environment value for a provider key, falling back to the config value
func ResolveAPIKey(name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key":    {"SPENDSENSE_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"anthropic_api_key": {"SPENDSENSE_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
	}

	for _, envVarName := range keyToEnvMapping[name] {
		if envValue := os.Getenv(envVarName); envValue != "" {
			return envValue, nil
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}

// ValidateSchedule validates a cron schedule expression and ensures minimum 5-minute interval
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	parts := strings.Fields(schedule)
	if len(parts) < 5 {
		return fmt.Errorf("invalid cron format: expected 5 fields")
	}

	minuteField := parts[0]

	if minuteField == "*" {
		return fmt.Errorf("schedule must have minimum 5-minute interval (every minute is not allowed)")
	}

	// */n patterns where n < 5
	if strings.HasPrefix(minuteField, "*/") {
		intervalStr := strings.TrimPrefix(minuteField, "*/")
		interval, err := strconv.Atoi(intervalStr)
		if err == nil && interval < 5 {
			return fmt.Errorf("schedule interval must be at least 5 minutes, got %d", interval)
		}
	}

	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

func parseIntList(s string) []int {
	var out []int
	for _, part := range strings.Split(s, ",") {
		if v, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			out = append(out, v)
		}
	}
	return out
}
