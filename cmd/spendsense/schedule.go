package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/ternarybob/spendsense/internal/common"
	"github.com/ternarybob/spendsense/internal/services/scheduler"
)

func runSchedule(ctx context.Context, args []string) error {
	var flags commonFlags
	fs := flag.NewFlagSet("schedule", flag.ContinueOnError)
	flags.register(fs)
	schedule := fs.String("schedule", "", "Cron expression (overrides config)")
	once := fs.Bool("once", false, "Run the refresh once and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(ctx, &flags)
	if err != nil {
		return err
	}
	defer a.Close()

	common.PrintBanner(common.GetVersion())

	config := a.config.Scheduler
	if *schedule != "" {
		config.Schedule = *schedule
	}

	sched := scheduler.NewService(a.logger)
	if err := sched.RegisterRefresh(config, a.service); err != nil {
		return err
	}

	if *once {
		return sched.RunJob(scheduler.RefreshJobName)
	}

	if err := sched.Start(); err != nil {
		return err
	}

	a.logger.Info().
		Str("schedule", config.Schedule).
		Str("window_days", fmt.Sprintf("%v", config.WindowDays)).
		Msg("Scheduler ready - Press Ctrl+C to stop")

	<-ctx.Done()
	a.logger.Info().Msg("Interrupt signal received")

	return sched.Stop()
}
