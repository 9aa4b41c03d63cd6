// Package file provides file-based persistence for workflow definitions and
// run history: one JSON document per record.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/persistence"
)

const (
	workflowsDir = "workflows"
	runsDir      = "runs"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root string
}

// NewPersistence creates file persistence rooted at the given directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{root: cleanRoot}
}

func (p *Persistence) Workflows(_ context.Context) ([]*models.WorkflowDefinition, error) {
	entries, err := os.ReadDir(filepath.Join(p.root, workflowsDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	var workflows []*models.WorkflowDefinition

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		def := &models.WorkflowDefinition{}
		if err := p.read(filepath.Join(workflowsDir, entry.Name()), def); err != nil {
			return nil, err
		}

		workflows = append(workflows, def)
	}

	return workflows, nil
}

func (p *Persistence) WorkflowByID(_ context.Context, id string) (*models.WorkflowDefinition, error) {
	def := &models.WorkflowDefinition{}

	err := p.read(filepath.Join(workflowsDir, id+".json"), def)
	if errors.Is(err, os.ErrNotExist) {
		return nil, persistence.ErrWorkflowNotFound
	}

	if err != nil {
		return nil, err
	}

	return def, nil
}

func (p *Persistence) SaveWorkflow(_ context.Context, def *models.WorkflowDefinition) error {
	return p.write(filepath.Join(workflowsDir, def.ID+".json"), def)
}

func (p *Persistence) SaveRun(_ context.Context, run *models.WorkflowRun) error {
	return p.write(filepath.Join(runsDir, run.ID+".json"), run)
}

func (p *Persistence) RunByID(_ context.Context, id string) (*models.WorkflowRun, error) {
	run := &models.WorkflowRun{}

	err := p.read(filepath.Join(runsDir, id+".json"), run)
	if errors.Is(err, os.ErrNotExist) {
		return nil, persistence.ErrRunNotFound
	}

	if err != nil {
		return nil, err
	}

	return run, nil
}

func (p *Persistence) RunsByWorkflow(_ context.Context, workflowID string) ([]*models.WorkflowRun, error) {
	entries, err := os.ReadDir(filepath.Join(p.root, runsDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	var runs []*models.WorkflowRun

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		run := &models.WorkflowRun{}
		if err := p.read(filepath.Join(runsDir, entry.Name()), run); err != nil {
			return nil, err
		}

		if run.WorkflowID == workflowID {
			runs = append(runs, run)
		}
	}

	return runs, nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func (p *Persistence) read(relPath string, target any) error {
	data, err := os.ReadFile(filepath.Join(p.root, relPath))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", relPath, err)
	}

	return nil
}

func (p *Persistence) write(relPath string, source any) error {
	fullPath := filepath.Join(p.root, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), dirPerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", relPath, err)
	}

	data, err := json.MarshalIndent(source, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", relPath, err)
	}

	if err := os.WriteFile(fullPath, data, filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", relPath, err)
	}

	return nil
}
