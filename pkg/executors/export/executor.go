// Package export implements the file export node executor: it writes the
// node's input to disk as JSON or CSV.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/executors"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/protocol"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/template"
)

const NodeType = "export"

const (
	formatJSON = "json"
	formatCSV  = "csv"
)

type Executor struct{}

func NewExecutor() *Executor { return &Executor{} }

func (e *Executor) Type() string { return NodeType }

func (e *Executor) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"path"},
		"properties": map[string]any{
			"path":      map[string]any{"type": "string", "minLength": 1},
			"format":    map[string]any{"type": "string", "enum": []any{formatJSON, formatCSV}},
			"input_key": map[string]any{"type": "string"},
			"columns": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	}
}

func (e *Executor) Execute(ctx context.Context, node *models.WorkflowNode, ec protocol.ExecutionContext) (*models.NodeExecutionResult, error) {
	if err := executors.ValidateProperties(e.Schema(), node.Properties); err != nil {
		return nil, err
	}

	path, err := template.RenderString(node.Properties["path"].(string), &ec)
	if err != nil {
		return nil, fmt.Errorf("failed to render path template: %w", err)
	}

	value, ok := ec.Input[executors.StringProperty(node.Properties, "input_key", models.PortMain)]
	if !ok {
		return models.FailureResult("nothing to export: input is empty"), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return models.FailureResult(fmt.Sprintf("failed to create export directory: %v", err)), nil
	}

	format := executors.StringProperty(node.Properties, "format", formatJSON)

	var rows int

	switch format {
	case formatCSV:
		rows, err = writeCSV(path, value, columnOrder(node.Properties))
	default:
		rows, err = writeJSON(path, value)
	}

	if err != nil {
		return models.FailureResult(err.Error()), nil
	}

	ec.Logger.InfoContext(ctx, "Exported data", "path", path, "format", format, "rows", rows)

	return models.SuccessResult(map[string]any{
		"path":   path,
		"format": format,
		"rows":   rows,
	}), nil
}

func columnOrder(properties map[string]any) []string {
	raw, ok := properties["columns"].([]any)
	if !ok {
		return nil
	}

	columns := make([]string, 0, len(raw))

	for _, item := range raw {
		if column, ok := item.(string); ok {
			columns = append(columns, column)
		}
	}

	return columns
}

func writeJSON(path string, value any) (int, error) {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode export data: %w", err)
	}

	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write export file: %w", err)
	}

	return len(asRows(value)), nil
}

func writeCSV(path string, value any, columns []string) (int, error) {
	rows := asRows(value)
	if len(rows) == 0 {
		return 0, fmt.Errorf("csv export requires a list of objects")
	}

	if len(columns) == 0 {
		columns = inferColumns(rows)
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create export file: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	writer := csv.NewWriter(file)

	if err := writer.Write(columns); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range rows {
		record := make([]string, len(columns))
		for i, column := range columns {
			record[i] = formatCell(row[column])
		}

		if err := writer.Write(record); err != nil {
			return 0, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush csv: %w", err)
	}

	return len(rows), nil
}

// asRows normalizes the exported value into a list of row maps. A payload
// carrying its rows under "rows" (the transform executor's list shape) is
// unwrapped.
func asRows(value any) []map[string]any {
	switch typed := value.(type) {
	case []map[string]any:
		return typed
	case []any:
		rows := make([]map[string]any, 0, len(typed))

		for _, item := range typed {
			if row, ok := item.(map[string]any); ok {
				rows = append(rows, row)
			}
		}

		return rows
	case map[string]any:
		if nested, ok := typed["rows"]; ok {
			return asRows(nested)
		}

		return []map[string]any{typed}
	default:
		return nil
	}
}

func inferColumns(rows []map[string]any) []string {
	seen := make(map[string]bool)

	var columns []string

	for _, row := range rows {
		for column := range row {
			if !seen[column] {
				seen[column] = true

				columns = append(columns, column)
			}
		}
	}

	sort.Strings(columns)

	return columns
}

func formatCell(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", typed), "0"), ".")
	default:
		return fmt.Sprintf("%v", typed)
	}
}
