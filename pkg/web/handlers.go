// Package web provides the REST API handlers for workflow and run
// management.
package web

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/engine"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/persistence"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/registry"
)

type APIHandlers struct {
	store    persistence.Persistence
	engine   *engine.Engine
	registry *registry.Registry
	validate *validator.Validate
}

func NewAPIHandlers(store persistence.Persistence, eng *engine.Engine, reg *registry.Registry) *APIHandlers {
	return &APIHandlers{
		store:    store,
		engine:   eng,
		registry: reg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.store.Workflows(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows": workflows,
		"count":     len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	def, err := h.store.WorkflowByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, persistence.ErrWorkflowNotFound) {
			return notFound(c, "workflow not found")
		}

		return internalError(c, err)
	}

	return c.JSON(def)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	def := &models.WorkflowDefinition{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Nodes:       req.Nodes,
		Connections: req.Connections,
		Variables:   req.Variables,
		Settings:    req.Settings,
		Owner:       req.Owner,
	}

	if err := def.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if _, err := h.store.WorkflowByID(c.Context(), def.ID); err == nil {
		return conflict(c, "workflow already exists: "+def.ID)
	}

	if err := h.store.SaveWorkflow(c.Context(), def); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(def)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")

	if _, err := h.store.WorkflowByID(c.Context(), id); err != nil {
		if errors.Is(err, persistence.ErrWorkflowNotFound) {
			return notFound(c, "workflow not found")
		}

		return internalError(c, err)
	}

	var req CreateWorkflowRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	def := &models.WorkflowDefinition{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Nodes:       req.Nodes,
		Connections: req.Connections,
		Variables:   req.Variables,
		Settings:    req.Settings,
		Owner:       req.Owner,
	}

	if err := def.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.store.SaveWorkflow(c.Context(), def); err != nil {
		return internalError(c, err)
	}

	return c.JSON(def)
}

// RunWorkflow starts a run. With ?wait=true the handler blocks until the run
// reaches a terminal state and returns the full record; otherwise it returns
// 202 with the run id.
func (h *APIHandlers) RunWorkflow(c fiber.Ctx) error {
	def, err := h.store.WorkflowByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, persistence.ErrWorkflowNotFound) {
			return notFound(c, "workflow not found")
		}

		return internalError(c, err)
	}

	var req RunWorkflowRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return badRequest(c, "Invalid request body: "+err.Error())
		}
	}

	wait := false
	if waitStr := c.Query("wait"); waitStr != "" {
		wait, _ = strconv.ParseBool(waitStr)
	}

	if wait {
		run, err := h.engine.ExecuteWorkflow(c.Context(), def, req.Input, req.UserID, models.TriggerTypeAPI)
		if run == nil {
			return internalError(c, err)
		}

		// The run record carries the outcome, including failures.
		return c.JSON(run)
	}

	runID, err := h.engine.StartWorkflow(c.Context(), def, req.Input, req.UserID, models.TriggerTypeAPI)
	if err != nil {
		var defErr *models.DefinitionError
		if errors.As(err, &defErr) {
			return badRequest(c, defErr.Error())
		}

		return internalError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(RunWorkflowResponse{
		RunID:      runID,
		WorkflowID: def.ID,
		Status:     models.RunStatusPending,
	})
}

// GetRun serves a run: live snapshot while active, stored record once
// terminal.
func (h *APIHandlers) GetRun(c fiber.Ctx) error {
	id := c.Params("id")

	if run, ok := h.engine.RunStatus(id); ok {
		return c.JSON(run)
	}

	run, err := h.store.RunByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, persistence.ErrRunNotFound) {
			return notFound(c, "run not found")
		}

		return internalError(c, err)
	}

	return c.JSON(run)
}

func (h *APIHandlers) GetWorkflowRuns(c fiber.Ctx) error {
	runs, err := h.store.RunsByWorkflow(c.Context(), c.Params("id"))
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"runs":  runs,
		"count": len(runs),
	})
}

func (h *APIHandlers) GetActiveRuns(c fiber.Ctx) error {
	runs := h.engine.ActiveRuns()

	return c.JSON(fiber.Map{
		"runs":  runs,
		"count": len(runs),
	})
}

func (h *APIHandlers) CancelRun(c fiber.Ctx) error {
	id := c.Params("id")

	if !h.engine.CancelWorkflow(id) {
		return notFound(c, "no active run with id "+id)
	}

	return c.JSON(fiber.Map{"run_id": id, "cancelled": true})
}

func (h *APIHandlers) GetNodeTypes(c fiber.Ctx) error {
	types := h.registry.Types()

	return c.JSON(fiber.Map{
		"node_types": types,
		"count":      len(types),
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	if err := h.store.HealthCheck(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{"status": "healthy"})
}
