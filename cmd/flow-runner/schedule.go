package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/schedule"
)

func scheduleCommand() *cli.Command {
	return &cli.Command{
		Name:    "schedule",
		Aliases: []string{"s"},
		Usage:   "Run workflows on cron schedules",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "entry",
				Aliases: []string{"e"},
				Usage:   "Schedule entry as '<workflow-id>=<cron expression>' (repeatable)",
			},
		},
		Action: scheduleAction,
	}
}

func scheduleAction(ctx context.Context, command *cli.Command) error {
	entries := command.StringSlice("entry")
	if len(entries) == 0 {
		return errors.New("at least one --entry is required")
	}

	rt, err := newRuntime(ctx, command, "flow-runner-scheduler")
	if err != nil {
		return err
	}
	defer rt.close(ctx)

	scheduler := schedule.NewScheduler(rt.engine, rt.store, rt.logger)

	for _, entry := range entries {
		workflowID, cronExpr, found := strings.Cut(entry, "=")
		if !found || workflowID == "" || cronExpr == "" {
			return fmt.Errorf("invalid --entry %q, expected '<workflow-id>=<cron expression>'", entry)
		}

		// Fail fast on unknown workflows instead of at first fire.
		if _, err := rt.store.WorkflowByID(ctx, workflowID); err != nil {
			return fmt.Errorf("cannot schedule %s: %w", workflowID, err)
		}

		if err := scheduler.AddWorkflow(workflowID, cronExpr); err != nil {
			return err
		}
	}

	rt.logger.InfoContext(ctx, "Scheduler started", "entries", len(entries))
	scheduler.Start(ctx)

	return nil
}
