package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/ternarybob/spendsense/internal/interfaces"
	"github.com/ternarybob/spendsense/internal/services/report"
)

func runReport(ctx context.Context, args []string) error {
	var flags commonFlags
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	flags.register(fs)
	userID := fs.String("user", "", "User ID (required unless -run is given)")
	runID := fs.String("run", "", "Export a specific stored run")
	format := fs.String("format", "", "Output format: md, html or pdf (overrides config)")
	output := fs.String("output", "", "Output directory (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" && *runID == "" {
		return fmt.Errorf("-user or -run is required")
	}

	a, err := newApp(ctx, &flags)
	if err != nil {
		return err
	}
	defer a.Close()

	record, err := a.findInsight(ctx, *userID, *runID, a.windowOrDefault(flags.windowDays))
	if err != nil {
		return err
	}

	config := a.config.Report
	if *output != "" {
		config.OutputDir = *output
	}
	service := report.NewService(config, a.logger)

	path, err := service.Write(record, *format)
	if err != nil {
		return err
	}

	if *format == report.FormatPDF || (*format == "" && config.Format == report.FormatPDF) {
		info, err := report.InspectPDF(path)
		if err != nil {
			return err
		}
		a.logger.Info().Str("path", path).Int("pages", info.PageCount).Msg("PDF report verified")
	}

	fmt.Println(path)
	return nil
}

// findInsight returns a stored run, or the latest run for the user, generating one if none exists
func (a *app) findInsight(ctx context.Context, userID, runID string, windowDays int) (*interfaces.InsightRecord, error) {
	store := a.storage.InsightStorage()
	if runID != "" {
		return store.GetInsight(ctx, runID)
	}

	record, err := store.GetLatestInsight(ctx, userID, windowDays)
	if errors.Is(err, interfaces.ErrNotFound) {
		a.logger.Info().
			Str("user_id", userID).
			Int("window_days", windowDays).
			Msg("No stored insight, generating")
		return a.service.Generate(ctx, userID, windowDays)
	}
	return record, err
}
