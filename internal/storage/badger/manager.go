package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/spendsense/internal/common"
	"github.com/ternarybob/spendsense/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db       *BadgerDB
	snapshot interfaces.SnapshotStorage
	insight  interfaces.InsightStorage
	source   interfaces.SnapshotSource
	logger   arbor.ILogger
}

// NewManager creates a new Badger storage manager.
// A nil source reads snapshots from Badger itself.
func NewManager(logger arbor.ILogger, config *common.BadgerConfig, source interfaces.SnapshotSource) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}
	return newManager(db, logger, source), nil
}

func newManager(db *BadgerDB, logger arbor.ILogger, source interfaces.SnapshotSource) *Manager {
	manager := &Manager{
		db:       db,
		snapshot: NewSnapshotStorage(db, logger),
		insight:  NewInsightStorage(db, logger),
		source:   source,
		logger:   logger,
	}
	if manager.source == nil {
		manager.source = manager.snapshot
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager
}

// SnapshotStorage returns the Snapshot storage interface
func (m *Manager) SnapshotStorage() interfaces.SnapshotStorage {
	return m.snapshot
}

// InsightStorage returns the Insight storage interface
func (m *Manager) InsightStorage() interfaces.InsightStorage {
	return m.insight
}

// Source returns the snapshot source used for generation
func (m *Manager) Source() interfaces.SnapshotSource {
	return m.source
}

// Close closes the external source, if any, and the database connection
func (m *Manager) Close() error {
	if m.source != nil && m.source != m.snapshot {
		if err := m.source.Close(); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to close snapshot source")
		}
	}
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
