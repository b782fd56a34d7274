package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/spendsense/internal/interfaces"
	"github.com/timshannon/badgerhold/v4"
)

// InsightStorage implements the InsightStorage interface for Badger
type InsightStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewInsightStorage creates a new InsightStorage instance
func NewInsightStorage(db *BadgerDB, logger arbor.ILogger) interfaces.InsightStorage {
	return &InsightStorage{
		db:     db,
		logger: logger,
	}
}

func (s *InsightStorage) SaveInsight(ctx context.Context, record *interfaces.InsightRecord) error {
	if record.RunID == "" {
		return fmt.Errorf("insight run ID is required")
	}
	if record.UserID == "" {
		return fmt.Errorf("insight user ID is required")
	}
	record.GeneratedUnix = record.GeneratedAt.UnixNano()

	if err := s.db.Store().Upsert(record.RunID, record); err != nil {
		return fmt.Errorf("failed to save insight: %w", err)
	}
	return nil
}

func (s *InsightStorage) GetInsight(ctx context.Context, runID string) (*interfaces.InsightRecord, error) {
	var record interfaces.InsightRecord
	if err := s.db.Store().Get(runID, &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("insight %s: %w", runID, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get insight: %w", err)
	}
	return &record, nil
}

func (s *InsightStorage) GetLatestInsight(ctx context.Context, userID string, windowDays int) (*interfaces.InsightRecord, error) {
	query := badgerhold.Where("UserID").Eq(userID).
		And("WindowDays").Eq(windowDays).
		SortBy("GeneratedUnix").Reverse().
		Limit(1)

	var records []interfaces.InsightRecord
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to find insight: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("insight for %s (%d days): %w", userID, windowDays, interfaces.ErrNotFound)
	}
	return &records[0], nil
}

func (s *InsightStorage) ListInsights(ctx context.Context, userID string) ([]*interfaces.InsightRecord, error) {
	var records []interfaces.InsightRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("UserID").Eq(userID).SortBy("GeneratedUnix").Reverse()); err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}

	result := make([]*interfaces.InsightRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}

func (s *InsightStorage) DeleteInsights(ctx context.Context, userID string) (int, error) {
	query := badgerhold.Where("UserID").Eq(userID)
	count, err := s.db.Store().Count(&interfaces.InsightRecord{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count insights: %w", err)
	}
	if err := s.db.Store().DeleteMatching(&interfaces.InsightRecord{}, query); err != nil {
		return 0, fmt.Errorf("failed to delete insights: %w", err)
	}
	return int(count), nil
}
