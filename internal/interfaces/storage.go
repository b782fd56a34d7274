package interfaces

import (
	"context"
	"encoding/gob"
	"errors"
	"time"

	"github.com/ternarybob/spendsense/internal/engine"
	"github.com/ternarybob/spendsense/internal/models"
)

func init() {
	gob.Register(InsightRecord{})
	gob.Register(engine.Result{})
}

// ErrNotFound is returned when a user, snapshot or insight does not exist
var ErrNotFound = errors.New("not found")

// SnapshotSource - read-only access to user accounts and transactions
type SnapshotSource interface {
	ListUsers(ctx context.Context) ([]string, error)
	GetAccounts(ctx context.Context, userID string) ([]models.Account, error)
	// GetTransactions returns transactions for the accounts dated within [start, end], ordered by date
	GetTransactions(ctx context.Context, accountIDs []string, start, end time.Time) ([]models.Transaction, error)
	Close() error
}

// SnapshotStorage - writable snapshot store used by imports
type SnapshotStorage interface {
	SnapshotSource
	SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error
	DeleteUser(ctx context.Context, userID string) error
}

// InsightRecord is one persisted engine run
type InsightRecord struct {
	RunID         string        `json:"run_id" badgerhold:"key"`
	UserID        string        `json:"user_id" badgerhold:"index"`
	WindowDays    int           `json:"window_days"`
	Generator     string        `json:"generator"`
	GeneratedAt   time.Time     `json:"generated_at"`
	GeneratedUnix int64         `json:"-"`
	Result        engine.Result `json:"result"`
}

// InsightStorage - persistence for engine results
type InsightStorage interface {
	SaveInsight(ctx context.Context, record *InsightRecord) error
	GetInsight(ctx context.Context, runID string) (*InsightRecord, error)
	// GetLatestInsight returns the newest record for the user and window
	GetLatestInsight(ctx context.Context, userID string, windowDays int) (*InsightRecord, error)
	// ListInsights returns the user's records, newest first
	ListInsights(ctx context.Context, userID string) ([]*InsightRecord, error)
	DeleteInsights(ctx context.Context, userID string) (int, error)
}

// StorageManager - composite storage interface
type StorageManager interface {
	SnapshotStorage() SnapshotStorage
	InsightStorage() InsightStorage
	// Source returns the configured snapshot source, which may be external
	Source() SnapshotSource
	Close() error
}
