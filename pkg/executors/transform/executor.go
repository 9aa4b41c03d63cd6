// Package transform implements the data transformation node executor. It
// supports two modes: a free-form template expression, and declarative field
// cleaners for inventory-style rows (prices, traffic figures, flags, URLs).
package transform

import (
	"context"
	"fmt"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/executors"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/protocol"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/services"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/template"
)

const NodeType = "transform"

// Cleaner names accepted in the "fields" property.
const (
	cleanerPrice    = "price"
	cleanerTraffic  = "traffic"
	cleanerBool     = "bool"
	cleanerDofollow = "dofollow"
	cleanerWebsite  = "website"
)

type Executor struct{}

func NewExecutor() *Executor { return &Executor{} }

func (e *Executor) Type() string { return NodeType }

func (e *Executor) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{"type": "string", "minLength": 1},
			"fields": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type": "string",
					"enum": []any{cleanerPrice, cleanerTraffic, cleanerBool, cleanerDofollow, cleanerWebsite},
				},
			},
			"input_key": map[string]any{"type": "string"},
		},
		"anyOf": []any{
			map[string]any{"required": []any{"expression"}},
			map[string]any{"required": []any{"fields"}},
		},
	}
}

func (e *Executor) Execute(ctx context.Context, node *models.WorkflowNode, ec protocol.ExecutionContext) (*models.NodeExecutionResult, error) {
	if err := executors.ValidateProperties(e.Schema(), node.Properties); err != nil {
		return nil, err
	}

	if expression := executors.StringProperty(node.Properties, "expression", ""); expression != "" {
		result, err := template.RenderWithContext(expression, &ec)
		if err != nil {
			return models.FailureResult(fmt.Sprintf("transformation failed: %v", err)), nil
		}

		return models.SuccessResult(map[string]any{"result": result}), nil
	}

	fields := executors.MapProperty(node.Properties, "fields")
	inputKey := executors.StringProperty(node.Properties, "input_key", models.PortMain)

	rows, single := normalizeInput(ec.Input[inputKey])
	if rows == nil {
		return models.FailureResult(fmt.Sprintf("no transformable input under %q", inputKey)), nil
	}

	cleaned := make([]map[string]any, 0, len(rows))

	for _, row := range rows {
		out, err := cleanRow(row, fields, ec.Services.Inventory)
		if err != nil {
			return models.FailureResult(err.Error()), nil
		}

		cleaned = append(cleaned, out)
	}

	if single {
		return models.SuccessResult(cleaned[0]), nil
	}

	return models.SuccessResult(map[string]any{"rows": cleaned, "count": len(cleaned)}), nil
}

// normalizeInput accepts a single object or a list of objects. The boolean
// reports whether the input was a single object, so the output shape mirrors
// the input shape.
func normalizeInput(value any) ([]map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return []map[string]any{typed}, true
	case []map[string]any:
		return typed, false
	case []any:
		rows := make([]map[string]any, 0, len(typed))

		for _, item := range typed {
			if row, ok := item.(map[string]any); ok {
				rows = append(rows, row)
			}
		}

		return rows, false
	default:
		return nil, false
	}
}

func cleanRow(row map[string]any, fields map[string]any, inventory *services.InventoryService) (map[string]any, error) {
	out := make(map[string]any, len(row))
	for key, value := range row {
		out[key] = value
	}

	for field, rawCleaner := range fields {
		cleaner, ok := rawCleaner.(string)
		if !ok {
			return nil, fmt.Errorf("invalid cleaner for field %q", field)
		}

		raw, _ := out[field].(string)

		switch cleaner {
		case cleanerPrice:
			out[field] = inventory.ParsePrice(raw)
		case cleanerTraffic:
			out[field] = inventory.ParseTraffic(raw)
		case cleanerBool:
			out[field] = inventory.ParseBool(raw)
		case cleanerDofollow:
			out[field] = inventory.ParseDofollow(raw)
		case cleanerWebsite:
			out[field] = inventory.CleanWebsite(raw)
		default:
			return nil, fmt.Errorf("unknown cleaner %q for field %q", cleaner, field)
		}
	}

	return out, nil
}
