package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ternarybob/spendsense/internal/ingest"
	"github.com/ternarybob/spendsense/internal/interfaces"
)

func runGenerate(ctx context.Context, args []string) error {
	var flags commonFlags
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	flags.register(fs)
	userID := fs.String("user", "", "User ID (required unless -input is given)")
	input := fs.String("input", "", "JSON snapshot file to read instead of the store")
	output := fs.String("output", "", "Write results to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" && *input == "" {
		return fmt.Errorf("-user or -input is required")
	}
	flags.quiet = *output == ""

	a, err := newApp(ctx, &flags)
	if err != nil {
		return err
	}
	defer a.Close()

	window := a.windowOrDefault(flags.windowDays)

	var records []*interfaces.InsightRecord
	if *input != "" {
		snapshots, err := ingest.LoadFile(*input)
		if err != nil {
			return err
		}
		for i := range snapshots {
			if *userID != "" && snapshots[i].UserID != *userID {
				continue
			}
			record, err := a.service.GenerateFromSnapshot(ctx, &snapshots[i], window)
			if err != nil {
				return fmt.Errorf("user %s: %w", snapshots[i].UserID, err)
			}
			records = append(records, record)
		}
		if len(records) == 0 {
			return fmt.Errorf("no snapshot for user %s in %s", *userID, *input)
		}
	} else {
		record, err := a.service.Generate(ctx, *userID, window)
		if err != nil {
			return err
		}
		records = append(records, record)
	}

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(records) == 1 {
		return enc.Encode(records[0])
	}
	return enc.Encode(records)
}
