// Package insights runs the recommendation engine for stored users and persists each run.
package insights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/spendsense/internal/common"
	"github.com/ternarybob/spendsense/internal/engine"
	"github.com/ternarybob/spendsense/internal/interfaces"
	"github.com/ternarybob/spendsense/internal/models"
	"github.com/ternarybob/spendsense/internal/recommend"
)

// ErrWindowNotAllowed is returned for an analysis window outside the configured list
var ErrWindowNotAllowed = errors.New("analysis window not allowed")

// DefaultAllowedWindows are the windows accepted when none are configured
var DefaultAllowedWindows = []int{30, 180}

// Service loads snapshots, runs the engine and stores the results
type Service struct {
	engine         *engine.Engine
	source         interfaces.SnapshotSource
	store          interfaces.InsightStorage
	generator      recommend.Generator
	generatorName  string
	allowedWindows []int
	now            func() time.Time
	logger         arbor.ILogger
}

// Option configures the service
type Option func(*Service)

// WithStore persists every generated result
func WithStore(store interfaces.InsightStorage) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithGenerator injects the generator passed to each engine run; name is recorded on the result
func WithGenerator(name string, gen recommend.Generator) Option {
	return func(s *Service) {
		s.generatorName = name
		s.generator = gen
	}
}

// WithAllowedWindows replaces the accepted windows
func WithAllowedWindows(windows []int) Option {
	return func(s *Service) {
		if len(windows) > 0 {
			s.allowedWindows = windows
		}
	}
}

// WithClock sets the reference time for window filtering
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new insights service
func NewService(eng *engine.Engine, source interfaces.SnapshotSource, logger arbor.ILogger, opts ...Option) *Service {
	if logger == nil {
		logger = arbor.NewLogger()
	}
	s := &Service{
		engine:         eng,
		source:         source,
		generatorName:  common.GeneratorTemplate,
		allowedWindows: DefaultAllowedWindows,
		now:            time.Now,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AllowedWindows returns the accepted analysis windows
func (s *Service) AllowedWindows() []int {
	return s.allowedWindows
}

func (s *Service) checkWindow(windowDays int) error {
	for _, w := range s.allowedWindows {
		if w == windowDays {
			return nil
		}
	}
	return fmt.Errorf("%w: %d (allowed %v)", ErrWindowNotAllowed, windowDays, s.allowedWindows)
}

// Generate runs the engine for a stored user over [now - window, now]
func (s *Service) Generate(ctx context.Context, userID string, windowDays int) (*interfaces.InsightRecord, error) {
	if err := s.checkWindow(windowDays); err != nil {
		return nil, err
	}
	if s.source == nil {
		return nil, fmt.Errorf("no snapshot source configured")
	}

	accounts, err := s.source.GetAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts for %s: %w", userID, err)
	}

	ids := make([]string, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}

	end := s.now().UTC()
	start := WindowStart(end, windowDays)
	transactions, err := s.source.GetTransactions(ctx, ids, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for %s: %w", userID, err)
	}

	return s.run(ctx, userID, accounts, transactions, windowDays)
}

// GenerateFromSnapshot runs the engine over file input.
// The window ends at the latest transaction date, or now when there are no transactions.
func (s *Service) GenerateFromSnapshot(ctx context.Context, snapshot *models.Snapshot, windowDays int) (*interfaces.InsightRecord, error) {
	if err := s.checkWindow(windowDays); err != nil {
		return nil, err
	}

	end := LatestTransaction(snapshot.Transactions)
	if end.IsZero() {
		end = s.now().UTC()
	}
	transactions := FilterWindow(snapshot.Transactions, WindowStart(end, windowDays), end)

	return s.run(ctx, snapshot.UserID, snapshot.Accounts, transactions, windowDays)
}

func (s *Service) run(ctx context.Context, userID string, accounts []models.Account, transactions []models.Transaction, windowDays int) (*interfaces.InsightRecord, error) {
	started := time.Now()

	result, err := s.engine.Generate(ctx, accounts, transactions, windowDays, s.generator)
	if err != nil {
		return nil, fmt.Errorf("insight generation failed for %s: %w", userID, err)
	}

	record := &interfaces.InsightRecord{
		RunID:       common.NewRunID(),
		UserID:      userID,
		WindowDays:  windowDays,
		Generator:   s.generatorName,
		GeneratedAt: s.now().UTC(),
		Result:      *result,
	}

	if s.store != nil {
		if err := s.store.SaveInsight(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to store insight for %s: %w", userID, err)
		}
	}

	s.logger.Info().
		Str("run_id", record.RunID).
		Str("user_id", userID).
		Int("window_days", windowDays).
		Str("persona", string(result.PersonaType)).
		Int("recommendations", len(result.Recommendations)).
		Int64("duration_ms", time.Since(started).Milliseconds()).
		Msg("Insights generated")

	return record, nil
}

// RefreshSummary reports the outcome of a RefreshAll run
type RefreshSummary struct {
	Users     int
	Generated int
	Failed    map[string]error
}

// RefreshAll regenerates insights for every user and window.
// A failure for one user does not stop the others; only listing errors and cancellation are returned.
func (s *Service) RefreshAll(ctx context.Context, windows []int) (*RefreshSummary, error) {
	if len(windows) == 0 {
		windows = s.allowedWindows
	}
	if s.source == nil {
		return nil, fmt.Errorf("no snapshot source configured")
	}

	users, err := s.source.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	summary := &RefreshSummary{Users: len(users), Failed: map[string]error{}}
	for _, userID := range users {
		for _, window := range windows {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			if _, err := s.Generate(ctx, userID, window); err != nil {
				s.logger.Warn().Err(err).Str("user_id", userID).Int("window_days", window).Msg("Insight refresh failed")
				summary.Failed[fmt.Sprintf("%s/%d", userID, window)] = err
				continue
			}
			summary.Generated++
		}
	}

	s.logger.Info().
		Int("users", summary.Users).
		Int("generated", summary.Generated).
		Int("failed", len(summary.Failed)).
		Msg("Insight refresh complete")

	return summary, nil
}

// WindowStart returns the first instant of a window of windowDays ending at end
func WindowStart(end time.Time, windowDays int) time.Time {
	return end.AddDate(0, 0, -windowDays)
}

// LatestTransaction returns the latest transaction date, or the zero time
func LatestTransaction(transactions []models.Transaction) time.Time {
	var latest time.Time
	for _, t := range transactions {
		if t.Date.After(latest) {
			latest = t.Date
		}
	}
	return latest
}

// FilterWindow returns transactions dated within [start, end], preserving order
func FilterWindow(transactions []models.Transaction, start, end time.Time) []models.Transaction {
	out := make([]models.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.Date.Before(start) || t.Date.After(end) {
			continue
		}
		out = append(out, t)
	}
	return out
}
