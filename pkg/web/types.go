package web

import "github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"

// CreateWorkflowRequest is the body of POST /workflows.
type CreateWorkflowRequest struct {
	ID          string                   `json:"id"          validate:"required"`
	Name        string                   `json:"name"        validate:"required,min=3"`
	Description string                   `json:"description"`
	Nodes       []*models.WorkflowNode   `json:"nodes"`
	Connections []*models.NodeConnection `json:"connections"`
	Variables   map[string]any           `json:"variables"`
	Settings    models.WorkflowSettings  `json:"settings"`
	Owner       string                   `json:"owner"`
}

// RunWorkflowRequest is the body of POST /workflows/:id/run.
type RunWorkflowRequest struct {
	Input  map[string]any `json:"input"`
	UserID string         `json:"user_id"`
}

// RunWorkflowResponse acknowledges an accepted run.
type RunWorkflowResponse struct {
	RunID      string           `json:"run_id"`
	WorkflowID string           `json:"workflow_id"`
	Status     models.RunStatus `json:"status"`
}
