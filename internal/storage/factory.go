package storage

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/spendsense/internal/common"
	"github.com/ternarybob/spendsense/internal/interfaces"
	"github.com/ternarybob/spendsense/internal/storage/badger"
	"github.com/ternarybob/spendsense/internal/storage/mongo"
)

// NewStorageManager creates the storage manager based on config.
// Badger always holds imports and insight records; the snapshot source is Badger or MongoDB.
func NewStorageManager(ctx context.Context, logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	var source interfaces.SnapshotSource

	switch config.Storage.Source {
	case common.SourceBadger, "":
	case common.SourceMongo:
		mongoSource, err := mongo.Connect(ctx, logger, &config.Storage.Mongo)
		if err != nil {
			return nil, err
		}
		source = mongoSource
	default:
		return nil, fmt.Errorf("unsupported snapshot source: %s (expected 'badger' or 'mongo')", config.Storage.Source)
	}

	manager, err := badger.NewManager(logger, &config.Storage.Badger, source)
	if err != nil {
		if source != nil {
			_ = source.Close()
		}
		return nil, err
	}
	return manager, nil
}
