package eval

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/spendsense/internal/common"
	"github.com/ternarybob/spendsense/internal/interfaces"
	"github.com/ternarybob/spendsense/internal/worker"
)

// InsightGenerator produces one insight record per user and window
type InsightGenerator interface {
	Generate(ctx context.Context, userID string, windowDays int) (*interfaces.InsightRecord, error)
}

// UserLister enumerates the users to evaluate
type UserLister interface {
	ListUsers(ctx context.Context) ([]string, error)
}

// Summary holds the aggregate metrics of one evaluation
type Summary struct {
	TotalUsers     int            `json:"total_users"`
	Errors         int            `json:"errors"`
	Coverage       float64        `json:"coverage"`
	Explainability float64        `json:"explainability"`
	Auditability   float64        `json:"auditability"`
	Relevance      RelevanceStats `json:"relevance"`
	Fairness       FairnessStats  `json:"fairness"`
	Latency        LatencyStats   `json:"latency"`
	PassesTargets  bool           `json:"passes_targets"`
}

// Report is the full output of an evaluation run
type Report struct {
	EvaluationID string        `json:"evaluation_id"`
	WindowDays   int           `json:"window_days"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration_ns"`
	Summary      Summary       `json:"summary"`
	Users        []UserResult  `json:"users"`
}

// Harness runs insight generation for many users through a worker pool and measures the results
type Harness struct {
	generator   InsightGenerator
	users       UserLister
	concurrency int
	now         func() time.Time
	logger      arbor.ILogger
}

// NewHarness creates a new evaluation harness
func NewHarness(generator InsightGenerator, users UserLister, logger arbor.ILogger, concurrency int) *Harness {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Harness{
		generator:   generator,
		users:       users,
		concurrency: concurrency,
		now:         time.Now,
		logger:      logger,
	}
}

type outcome struct {
	record  *interfaces.InsightRecord
	latency time.Duration
}

// Run evaluates the given users, or every known user when userIDs is empty
func (h *Harness) Run(ctx context.Context, windowDays int, userIDs []string) (*Report, error) {
	if len(userIDs) == 0 {
		listed, err := h.users.ListUsers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		userIDs = listed
	}

	started := h.now()
	h.logger.Info().
		Int("users", len(userIDs)).
		Int("window_days", windowDays).
		Int("concurrency", h.concurrency).
		Msg("Starting evaluation")

	var mu sync.Mutex
	outcomes := make(map[string]outcome, len(userIDs))

	executor := worker.ExecutorFunc(func(ctx context.Context, userID string) error {
		begin := time.Now()
		record, err := h.generator.Generate(ctx, userID, windowDays)
		elapsed := time.Since(begin)

		mu.Lock()
		outcomes[userID] = outcome{record: record, latency: elapsed}
		mu.Unlock()
		return err
	})

	results := worker.NewWorkerPool(executor, h.logger, h.concurrency).Run(ctx, userIDs)

	metrics := NewMetrics()
	for _, result := range results {
		out := outcomes[result.TaskID]
		if result.Err != nil || out.record == nil {
			err := result.Err
			if err == nil {
				err = fmt.Errorf("no insight generated")
			}
			metrics.RecordError(result.TaskID, windowDays, err, out.latency)
			continue
		}
		metrics.Record(out.record, out.latency)
	}

	report := &Report{
		EvaluationID: common.NewEvaluationID(),
		WindowDays:   windowDays,
		StartedAt:    started,
		Duration:     h.now().Sub(started),
		Summary:      summarize(metrics),
		Users:        metrics.Users(),
	}

	h.logger.Info().
		Str("evaluation_id", report.EvaluationID).
		Int("users", report.Summary.TotalUsers).
		Int("errors", report.Summary.Errors).
		Bool("passes_targets", report.Summary.PassesTargets).
		Dur("duration", report.Duration).
		Msg("Evaluation complete")

	return report, nil
}

func summarize(m *Metrics) Summary {
	return Summary{
		TotalUsers:     len(m.Users()),
		Errors:         m.ErrorCount(),
		Coverage:       m.Coverage(),
		Explainability: m.Explainability(),
		Auditability:   m.Auditability(),
		Relevance:      m.Relevance(),
		Fairness:       m.Fairness(),
		Latency:        m.Latency(),
		PassesTargets:  m.PassesTargets(),
	}
}

// WriteJSON writes the report as indented JSON
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

var csvHeader = []string{
	"user_id", "window_days", "success", "error", "latency_ms", "persona", "confidence",
	"signal_categories", "education_count", "offer_count", "complete_traces",
}

// WriteCSV writes one row per user
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, u := range r.Users {
		row := []string{
			u.UserID,
			strconv.Itoa(u.WindowDays),
			strconv.FormatBool(u.Success),
			u.Error,
			strconv.FormatInt(u.Latency.Milliseconds(), 10),
			string(u.Persona),
			strconv.FormatFloat(u.Confidence, 'f', 2, 64),
			strconv.Itoa(u.SignalCount),
			strconv.Itoa(u.EducationCount),
			strconv.Itoa(u.OfferCount),
			strconv.Itoa(u.CompleteTraces),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Markdown renders a human-readable summary
func (r *Report) Markdown() string {
	s := r.Summary
	var b strings.Builder

	status := "FAIL"
	if s.PassesTargets {
		status = "PASS"
	}

	fmt.Fprintf(&b, "# Evaluation %s\n\n", r.EvaluationID)
	fmt.Fprintf(&b, "- Window: %d days\n", r.WindowDays)
	fmt.Fprintf(&b, "- Users: %d (%d errors)\n", s.TotalUsers, s.Errors)
	fmt.Fprintf(&b, "- Started: %s\n", r.StartedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Targets: **%s**\n\n", status)

	b.WriteString("| Metric | Value | Target |\n")
	b.WriteString("|---|---|---|\n")
	fmt.Fprintf(&b, "| Coverage | %.1f%% | %.0f%% |\n", s.Coverage, TargetCoverage)
	fmt.Fprintf(&b, "| Explainability | %.1f%% | %.0f%% |\n", s.Explainability, TargetExplainability)
	fmt.Fprintf(&b, "| Auditability | %.1f%% | %.0f%% |\n", s.Auditability, TargetAuditability)
	fmt.Fprintf(&b, "| Relevance (avg) | %.2f | %.1f |\n", s.Relevance.Avg, TargetRelevance)
	fmt.Fprintf(&b, "| Latency (avg) | %s | < %s |\n", s.Latency.Avg, TargetLatency)
	fmt.Fprintf(&b, "| Latency (p95) | %s | |\n", s.Latency.P95)

	b.WriteString("\n## Fairness\n\n")
	fmt.Fprintf(&b, "- Fair: %t\n", s.Fairness.IsFair)
	fmt.Fprintf(&b, "- Largest persona share: %.1f%%\n", s.Fairness.MaxPersonaShare)
	fmt.Fprintf(&b, "- Normalized entropy: %.2f\n", s.Fairness.NormalizedEntropy)
	if len(s.Fairness.Underrepresented) > 0 {
		names := make([]string, 0, len(s.Fairness.Underrepresented))
		for _, p := range s.Fairness.Underrepresented {
			names = append(names, string(p))
		}
		fmt.Fprintf(&b, "- Underrepresented: %s\n", strings.Join(names, ", "))
	}

	if s.Errors > 0 {
		b.WriteString("\n## Errors\n\n")
		for _, u := range r.Users {
			if !u.Success {
				fmt.Fprintf(&b, "- %s: %s\n", u.UserID, u.Error)
			}
		}
	}
	return b.String()
}

// Save writes the JSON, CSV and markdown outputs into dir and returns their paths
func (r *Report) Save(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	base := filepath.Join(dir, r.EvaluationID)
	outputs := []struct {
		path  string
		write func(io.Writer) error
	}{
		{base + ".json", r.WriteJSON},
		{base + ".csv", r.WriteCSV},
		{base + ".md", func(w io.Writer) error {
			_, err := io.WriteString(w, r.Markdown())
			return err
		}},
	}

	paths := make([]string, 0, len(outputs))
	for _, out := range outputs {
		if err := writeFile(out.path, out.write); err != nil {
			return paths, err
		}
		paths = append(paths, out.path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
