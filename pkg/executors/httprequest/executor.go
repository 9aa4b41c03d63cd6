// Package httprequest implements the HTTP request node executor with success
// and error output ports.
package httprequest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/executors"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/protocol"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/services"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/template"
)

const (
	NodeType = "http_request"

	OutputPortSuccess = "success"
	OutputPortError   = "error"
)

// Executor performs one outbound HTTP call per node execution. URL, body and
// header values are templated against the execution context. A failed call
// still publishes details on the error port so downstream nodes can branch
// on it under the continue strategy.
type Executor struct{}

func NewExecutor() *Executor { return &Executor{} }

func (e *Executor) Type() string { return NodeType }

func (e *Executor) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"url"},
		"properties": map[string]any{
			"url": map[string]any{"type": "string", "minLength": 1},
			"method": map[string]any{
				"type": "string",
				"enum": []any{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
			},
			"headers":     map[string]any{"type": "object"},
			"body":        map[string]any{"type": "string"},
			"timeout":     map[string]any{"type": "number", "minimum": 1, "maximum": 300},
			"retries":     map[string]any{"type": "number", "minimum": 1, "maximum": 10},
			"retry_delay": map[string]any{"type": "number", "minimum": 0, "maximum": 30000},
		},
	}
}

func (e *Executor) Execute(ctx context.Context, node *models.WorkflowNode, ec protocol.ExecutionContext) (*models.NodeExecutionResult, error) {
	if err := executors.ValidateProperties(e.Schema(), node.Properties); err != nil {
		return nil, err
	}

	url, err := template.RenderString(node.Properties["url"].(string), &ec)
	if err != nil {
		return nil, fmt.Errorf("failed to render URL template: %w", err)
	}

	body := ""
	if raw := executors.StringProperty(node.Properties, "body", ""); raw != "" {
		body, err = template.RenderString(raw, &ec)
		if err != nil {
			return nil, fmt.Errorf("failed to render body template: %w", err)
		}
	}

	req := services.HTTPRequest{
		Method:  strings.ToUpper(executors.StringProperty(node.Properties, "method", http.MethodGet)),
		URL:     url,
		Headers: e.renderHeaders(node.Properties, &ec),
		Body:    body,
	}

	if timeout := executors.IntProperty(node.Properties, "timeout", 0); timeout > 0 {
		req.Timeout = time.Duration(timeout) * time.Second
	}

	if attempts := executors.IntProperty(node.Properties, "retries", 0); attempts > 0 {
		req.Retries = &services.RetryPolicy{
			Attempts: attempts,
			Delay:    time.Duration(executors.IntProperty(node.Properties, "retry_delay", 0)) * time.Millisecond,
		}
	}

	resp, err := ec.Services.HTTP.Do(ctx, req)
	if err != nil {
		return &models.NodeExecutionResult{
			Success: false,
			Error:   err.Error(),
			OutputPorts: map[string]any{
				OutputPortError: map[string]any{"error": err.Error(), "url": url},
			},
		}, nil
	}

	data := map[string]any{
		"status_code": resp.StatusCode,
		"headers":     resp.Headers,
		"body":        resp.Body,
	}
	if resp.JSON != nil {
		data["json"] = resp.JSON
	}

	return &models.NodeExecutionResult{
		Success: true,
		Data:    data,
		OutputPorts: map[string]any{
			OutputPortSuccess: data,
			models.PortMain:   data,
		},
	}, nil
}

// renderHeaders templates each header value; a value whose template fails is
// passed through verbatim.
func (e *Executor) renderHeaders(properties map[string]any, ec *protocol.ExecutionContext) map[string]string {
	raw := executors.MapProperty(properties, "headers")
	if raw == nil {
		return nil
	}

	headers := make(map[string]string, len(raw))

	for key, value := range raw {
		strValue, ok := value.(string)
		if !ok {
			continue
		}

		if rendered, err := template.RenderString(strValue, ec); err == nil {
			headers[key] = rendered
		} else {
			headers[key] = strValue
		}
	}

	return headers
}
