// -----------------------------------------------------------------------
// SpendSense command line: generate, import, evaluate, report, schedule
// -----------------------------------------------------------------------

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/spendsense/internal/catalog"
	"github.com/ternarybob/spendsense/internal/common"
	"github.com/ternarybob/spendsense/internal/engine"
	"github.com/ternarybob/spendsense/internal/guardrails"
	"github.com/ternarybob/spendsense/internal/interfaces"
	"github.com/ternarybob/spendsense/internal/models"
	"github.com/ternarybob/spendsense/internal/services/insights"
	"github.com/ternarybob/spendsense/internal/services/llm"
	"github.com/ternarybob/spendsense/internal/storage"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// commonFlags are accepted by every subcommand that runs the pipeline
type commonFlags struct {
	configFiles configPaths
	windowDays  int
	generator   string
	catalogPath string
	quiet       bool // Keep stdout free for command output
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.Var(&f.configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	fs.Var(&f.configFiles, "c", "Configuration file path (shorthand)")
	fs.IntVar(&f.windowDays, "window", 0, "Analysis window in days (overrides config)")
	fs.StringVar(&f.generator, "generator", "", "Rationale generator: template or llm (overrides config)")
	fs.StringVar(&f.catalogPath, "catalog", "", "Content catalog YAML (overrides config)")
}

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, args []string) error
}

var commands = []command{
	{"generate", "Generate insights for a user from the store or a JSON file", runGenerate},
	{"import", "Import JSON or CSV snapshots into the local store", runImport},
	{"evaluate", "Run the evaluation harness over stored users", runEvaluate},
	{"report", "Export an insight report as md, html or pdf", runReport},
	{"schedule", "Refresh insights on the configured cron schedule", runSchedule},
	{"version", "Print version information", runVersion},
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: spendsense <command> [flags]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", c.name, c.usage)
	}
}

func main() {
	defer common.RecoverWithCrashFile()
	common.LoadVersionFromFile("")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	name := os.Args[1]
	if name == "-h" || name == "--help" || name == "help" {
		usage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, c := range commands {
		if c.name != name {
			continue
		}
		if err := c.run(ctx, os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "spendsense %s: %v\n", name, err)
			stop()
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
	usage()
	os.Exit(2)
}

// app holds the wired components for one command invocation
type app struct {
	config   *common.Config
	logger   arbor.ILogger
	storage  interfaces.StorageManager
	service  *insights.Service
	provider *llm.ProviderFactory
}

// loadConfig runs the startup sequence: defaults -> files -> env -> flags, then the logger
func loadConfig(flags *commonFlags) (*common.Config, arbor.ILogger, error) {
	// Auto-discover config file if not specified
	if len(flags.configFiles) == 0 {
		if _, err := os.Stat("spendsense.toml"); err == nil {
			flags.configFiles = append(flags.configFiles, "spendsense.toml")
		} else if _, err := os.Stat("deployments/local/spendsense.toml"); err == nil {
			flags.configFiles = append(flags.configFiles, "deployments/local/spendsense.toml")
		}
	}

	config, err := common.LoadFromFiles(flags.configFiles...)
	if err != nil {
		// Use the console logger for startup errors
		common.GetLogger().Error().Strs("paths", flags.configFiles).Err(err).Msg("Failed to load configuration files")
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	common.ApplyFlagOverrides(config, flags.windowDays, flags.generator, flags.catalogPath)
	if flags.quiet {
		config.Logging.Output = withoutStdout(config.Logging.Output)
	}
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}

	logger := common.InitLogger(config, "")
	common.InstallCrashHandler("")

	logger.Debug().
		Strs("config_files", flags.configFiles).
		Str("environment", config.Environment).
		Str("storage_source", config.Storage.Source).
		Str("badger_path", config.Storage.Badger.Path).
		Str("generator", config.Engine.Generator).
		Int("window_days", config.Engine.WindowDays).
		Str("log_file", common.GetLogFilePath(logger)).
		Msg("Resolved configuration (sanitized)")

	if config.IsProduction() && !config.Engine.ToneCheck {
		logger.Warn().Msg("Tone check is disabled in production")
	}

	return config, logger, nil
}

// newApp loads configuration and wires storage, the engine and the insights service
func newApp(ctx context.Context, flags *commonFlags) (*app, error) {
	config, logger, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalog(config.Catalog.Path)
	if err != nil {
		return nil, err
	}

	engineOpts := []engine.Option{
		engine.WithCatalog(cat),
		engine.WithLimit(config.Engine.RecommendationLimit),
		engine.WithOffers(config.Engine.IncludeOffers),
		engine.WithLogger(logger),
	}
	if config.Engine.ToneCheck {
		engineOpts = append(engineOpts, engine.WithToneCheck(guardrails.CheckTone))
	}
	eng := engine.New(engineOpts...)

	store, err := storage.NewStorageManager(ctx, logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	a := &app{config: config, logger: logger, storage: store}

	serviceOpts := []insights.Option{
		insights.WithStore(store.InsightStorage()),
		insights.WithAllowedWindows(config.Engine.AllowedWindows),
	}
	if config.Engine.Generator == common.GeneratorLLM {
		a.provider = llm.NewProviderFactory(config, logger)
		gen := llm.NewGenerator(a.provider, logger, llm.WithToneCheck(guardrails.CheckTone))
		serviceOpts = append(serviceOpts, insights.WithGenerator(common.GeneratorLLM, gen))
	}
	a.service = insights.NewService(eng, store.Source(), logger, serviceOpts...)

	logger.Info().
		Int("content_items", len(cat.Education)).
		Int("offers", len(cat.Offers)).
		Str("generator", config.Engine.Generator).
		Msg("Application initialized")

	return a, nil
}

func loadCatalog(path string) (*models.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

// Close releases storage and provider clients
func (a *app) Close() {
	if a.provider != nil {
		if err := a.provider.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close LLM provider")
		}
	}
	if err := a.storage.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to close storage")
	}
}

// windowOrDefault returns the flag window, falling back to the configured default
func (a *app) windowOrDefault(windowDays int) int {
	if windowDays > 0 {
		return windowDays
	}
	return a.config.Engine.WindowDays
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// withoutStdout drops console outputs, keeping file logging
func withoutStdout(outputs []string) []string {
	kept := []string{"file"}
	for _, o := range outputs {
		if o != "stdout" && o != "console" && o != "file" {
			kept = append(kept, o)
		}
	}
	return kept
}
