package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/ternarybob/spendsense/internal/eval"
)

func runEvaluate(ctx context.Context, args []string) error {
	var flags commonFlags
	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	flags.register(fs)
	users := fs.String("users", "", "Comma-separated user IDs (default: every stored user)")
	output := fs.String("output", "", "Output directory (overrides config)")
	concurrency := fs.Int("concurrency", 0, "Worker pool size (overrides config)")
	strict := fs.Bool("strict", false, "Exit non-zero when a quality target is missed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(ctx, &flags)
	if err != nil {
		return err
	}
	defer a.Close()

	workers := a.config.Evaluation.Concurrency
	if *concurrency > 0 {
		workers = *concurrency
	}
	dir := a.config.Evaluation.OutputDir
	if *output != "" {
		dir = *output
	}

	harness := eval.NewHarness(a.service, a.storage.Source(), a.logger, workers)
	report, err := harness.Run(ctx, a.windowOrDefault(flags.windowDays), splitList(*users))
	if err != nil {
		return err
	}

	paths, err := report.Save(dir)
	if err != nil {
		return err
	}
	a.logger.Info().Strs("files", paths).Msg("Evaluation results written")

	fmt.Print(report.Markdown())

	if *strict && !report.Summary.PassesTargets {
		return fmt.Errorf("evaluation %s missed its quality targets", report.EvaluationID)
	}
	return nil
}
