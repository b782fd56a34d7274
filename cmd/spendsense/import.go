package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/ternarybob/spendsense/internal/ingest"
	"github.com/ternarybob/spendsense/internal/models"
)

func runImport(ctx context.Context, args []string) error {
	var flags commonFlags
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	flags.register(fs)
	input := fs.String("input", "", "JSON snapshot file")
	accounts := fs.String("accounts", "", "Accounts CSV file")
	transactions := fs.String("transactions", "", "Transactions CSV file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var snapshots []models.Snapshot
	var err error
	switch {
	case *input != "":
		snapshots, err = ingest.LoadFile(*input)
	case *accounts != "" && *transactions != "":
		snapshots, err = ingest.LoadCSV(*accounts, *transactions)
	default:
		return fmt.Errorf("-input or both -accounts and -transactions are required")
	}
	if err != nil {
		return err
	}

	a, err := newApp(ctx, &flags)
	if err != nil {
		return err
	}
	defer a.Close()

	store := a.storage.SnapshotStorage()
	transactionCount := 0
	for i := range snapshots {
		if err := store.SaveSnapshot(ctx, &snapshots[i]); err != nil {
			return fmt.Errorf("failed to save user %s: %w", snapshots[i].UserID, err)
		}
		transactionCount += len(snapshots[i].Transactions)
	}

	a.logger.Info().
		Int("users", len(snapshots)).
		Int("transactions", transactionCount).
		Str("path", a.config.Storage.Badger.Path).
		Msg("Snapshots imported")

	fmt.Printf("Imported %d users (%d transactions)\n", len(snapshots), transactionCount)
	return nil
}
