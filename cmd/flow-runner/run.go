package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Execute a workflow once and print the run record",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "workflow-id",
				Aliases: []string{"w"},
				Usage:   "ID of a stored workflow to execute",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Path to a workflow definition JSON file",
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Run input as a JSON object",
			},
			&cli.StringFlag{
				Name:    "user-id",
				Usage:   "User the run is attributed to",
				Sources: cli.EnvVars("USER_ID"),
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, command *cli.Command) error {
	rt, err := newRuntime(ctx, command, "flow-runner")
	if err != nil {
		return err
	}
	defer rt.close(ctx)

	def, err := loadDefinition(ctx, rt, command)
	if err != nil {
		return err
	}

	var input map[string]any
	if raw := command.String("input"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input); err != nil {
			return fmt.Errorf("invalid --input JSON: %w", err)
		}
	}

	run, execErr := rt.engine.ExecuteWorkflow(ctx, def, input, command.String("user-id"), models.TriggerTypeManual)

	encoded, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(encoded))

	if execErr != nil {
		return fmt.Errorf("run %s finished with status %s: %w", run.ID, run.Status, execErr)
	}

	return nil
}

func loadDefinition(ctx context.Context, rt *runtime, command *cli.Command) (*models.WorkflowDefinition, error) {
	workflowID := command.String("workflow-id")
	path := command.String("file")

	switch {
	case workflowID != "" && path != "":
		return nil, errors.New("--workflow-id and --file are mutually exclusive")
	case workflowID != "":
		return rt.store.WorkflowByID(ctx, workflowID)
	case path != "":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read workflow file: %w", err)
		}

		var def models.WorkflowDefinition
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("failed to decode workflow file: %w", err)
		}

		return &def, nil
	default:
		return nil, errors.New("either --workflow-id or --file is required")
	}
}
