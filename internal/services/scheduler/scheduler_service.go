package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/spendsense/internal/common"
	"github.com/ternarybob/spendsense/internal/services/insights"
)

// RefreshJobName is the job that regenerates insights for every user
const RefreshJobName = "insight_refresh"

// Handler is the work a scheduled job performs
type Handler func(ctx context.Context) error

// JobStatus describes a registered job
type JobStatus struct {
	Name        string     `json:"name"`
	Schedule    string     `json:"schedule"`
	Description string     `json:"description"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	NextRun     *time.Time `json:"next_run,omitempty"`
	IsRunning   bool       `json:"is_running"`
	LastError   string     `json:"last_error,omitempty"`
}

// jobEntry represents a registered job with metadata
type jobEntry struct {
	name        string
	schedule    string
	description string
	handler     Handler
	cronID      cron.EntryID
	lastRun     *time.Time
	isRunning   bool
	lastError   string
}

// Refresher regenerates stored insights
type Refresher interface {
	RefreshAll(ctx context.Context, windows []int) (*insights.RefreshSummary, error)
}

// Service runs registered jobs on cron schedules
type Service struct {
	cron     *cron.Cron
	logger   arbor.ILogger
	jobMu    sync.Mutex // Protects jobs map
	globalMu sync.Mutex // Prevents concurrent job execution
	jobs     map[string]*jobEntry
	running  bool
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewService creates a new scheduler service
func NewService(logger arbor.ILogger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cron:   cron.New(),
		logger: logger,
		jobs:   make(map[string]*jobEntry),
		ctx:    ctx,
		cancel: cancel,
	}
}

// RegisterRefresh registers the nightly insight refresh for the configured windows
func (s *Service) RegisterRefresh(config common.SchedulerConfig, refresher Refresher) error {
	windows := append([]int(nil), config.WindowDays...)
	return s.RegisterJob(RefreshJobName, config.Schedule, "Regenerate insights for every user", func(ctx context.Context) error {
		summary, err := refresher.RefreshAll(ctx, windows)
		if err != nil {
			return err
		}
		if len(summary.Failed) > 0 {
			return fmt.Errorf("%d of %d refreshes failed", len(summary.Failed), len(summary.Failed)+summary.Generated)
		}
		return nil
	})
}

// RegisterJob registers a new job with the scheduler
func (s *Service) RegisterJob(name, schedule, description string, handler Handler) error {
	if err := common.ValidateSchedule(schedule); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}

	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	entry := &jobEntry{
		name:        name,
		schedule:    schedule,
		description: description,
		handler:     handler,
	}

	cronID, err := s.cron.AddFunc(schedule, func() {
		s.executeJob(name)
	})
	if err != nil {
		return fmt.Errorf("failed to add job to cron: %w", err)
	}

	entry.cronID = cronID
	s.jobs[name] = entry

	s.logger.Info().
		Str("job_name", name).
		Str("schedule", schedule).
		Msg("Job registered")

	return nil
}

// Start begins running registered jobs on their schedules
func (s *Service) Start() error {
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	s.cron.Start()
	s.running = true

	s.jobMu.Lock()
	count := len(s.jobs)
	s.jobMu.Unlock()

	s.logger.Info().Int("jobs", count).Msg("Scheduler started")
	return nil
}

// Stop halts the scheduler, cancels running jobs and waits for them to return
func (s *Service) Stop() error {
	if !s.running {
		return nil
	}

	s.cancel()
	<-s.cron.Stop().Done()
	s.running = false

	s.logger.Info().
		Int64("goroutines_spawned", common.GetGoroutineCount()).
		Msg("Scheduler stopped")
	return nil
}

// IsRunning returns true if scheduler is active
func (s *Service) IsRunning() bool {
	return s.running
}

// TriggerJob runs a job in the background outside its schedule
func (s *Service) TriggerJob(name string) error {
	s.jobMu.Lock()
	entry, exists := s.jobs[name]
	if !exists {
		s.jobMu.Unlock()
		return fmt.Errorf("job %s not found", name)
	}
	if entry.isRunning {
		s.jobMu.Unlock()
		return fmt.Errorf("job %s is already running", name)
	}
	s.jobMu.Unlock()

	s.logger.Info().
		Str("job_name", name).
		Msg("Manually triggering job execution")

	common.SafeGo(s.logger, "job:"+name, func() {
		s.executeJob(name)
	})
	return nil
}

// RunJob runs a job synchronously and returns its error
func (s *Service) RunJob(name string) error {
	s.jobMu.Lock()
	_, exists := s.jobs[name]
	s.jobMu.Unlock()
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}
	return s.executeJob(name)
}

// GetJobStatus returns the status of one job
func (s *Service) GetJobStatus(name string) (*JobStatus, error) {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	entry, exists := s.jobs[name]
	if !exists {
		return nil, fmt.Errorf("job %s not found", name)
	}

	var nextRun *time.Time
	if s.running {
		next := s.cron.Entry(entry.cronID).Next
		if !next.IsZero() {
			nextRun = &next
		}
	}

	return &JobStatus{
		Name:        entry.name,
		Schedule:    entry.schedule,
		Description: entry.description,
		LastRun:     entry.lastRun,
		NextRun:     nextRun,
		IsRunning:   entry.isRunning,
		LastError:   entry.lastError,
	}, nil
}

// GetAllJobStatuses returns every job status ordered by name
func (s *Service) GetAllJobStatuses() []*JobStatus {
	s.jobMu.Lock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	s.jobMu.Unlock()
	sort.Strings(names)

	statuses := make([]*JobStatus, 0, len(names))
	for _, name := range names {
		if status, err := s.GetJobStatus(name); err == nil {
			statuses = append(statuses, status)
		}
	}
	return statuses
}

// executeJob wraps job execution with mutex, panic recovery, and status tracking
func (s *Service) executeJob(name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("job_name", name).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("PANIC RECOVERED in job execution")

			err = fmt.Errorf("job %s panicked: %v", name, r)
			s.finishJob(name, err)
		}
	}()

	// Acquire global mutex to prevent concurrent execution
	s.globalMu.Lock()
	defer s.globalMu.Unlock()

	s.jobMu.Lock()
	entry, exists := s.jobs[name]
	if !exists {
		s.jobMu.Unlock()
		s.logger.Warn().Str("job_name", name).Msg("Job not found")
		return fmt.Errorf("job %s not found", name)
	}
	entry.isRunning = true
	handler := entry.handler
	s.jobMu.Unlock()

	s.logger.Info().Str("job_name", name).Msg("Job execution started")

	started := time.Now()
	err = handler(s.ctx)
	s.finishJob(name, err)

	if err != nil {
		s.logger.Error().
			Str("job_name", name).
			Err(err).
			Dur("duration", time.Since(started)).
			Msg("Job execution failed")
	} else {
		s.logger.Info().
			Str("job_name", name).
			Dur("duration", time.Since(started)).
			Msg("Job execution completed")
	}
	return err
}

func (s *Service) finishJob(name string, err error) {
	completed := time.Now()

	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	entry, exists := s.jobs[name]
	if !exists {
		return
	}
	entry.isRunning = false
	entry.lastRun = &completed
	entry.lastError = ""
	if err != nil {
		entry.lastError = err.Error()
	}
}
