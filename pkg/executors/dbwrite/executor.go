// Package dbwrite implements the database write node executor: it inserts
// the rows received on its input into a postgres table.
package dbwrite

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/executors"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/protocol"
)

const NodeType = "db_write"

// identifierPattern restricts table and column names to plain identifiers;
// they are interpolated into SQL and must never carry user input verbatim.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Executor writes rows into a configured table. Rows come from the node's
// input: either a list of objects or a single object under the configured
// input key. Values are bound as placeholders; only identifiers come from
// node properties.
type Executor struct{}

func NewExecutor() *Executor { return &Executor{} }

func (e *Executor) Type() string { return NodeType }

func (e *Executor) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"table", "columns"},
		"properties": map[string]any{
			"table": map[string]any{"type": "string", "minLength": 1},
			"columns": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]any{"type": "string", "minLength": 1},
			},
			"input_key":   map[string]any{"type": "string"},
			"on_conflict": map[string]any{"type": "string"},
		},
	}
}

func (e *Executor) Execute(ctx context.Context, node *models.WorkflowNode, ec protocol.ExecutionContext) (*models.NodeExecutionResult, error) {
	if err := executors.ValidateProperties(e.Schema(), node.Properties); err != nil {
		return nil, err
	}

	if ec.Services.Database == nil {
		return models.FailureResult("database service not configured for this run"), nil
	}

	table := node.Properties["table"].(string)
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %s", table)
	}

	columns, err := columnNames(node.Properties["columns"])
	if err != nil {
		return nil, err
	}

	conflictColumn := executors.StringProperty(node.Properties, "on_conflict", "")
	if conflictColumn != "" && !identifierPattern.MatchString(conflictColumn) {
		return nil, fmt.Errorf("invalid conflict column: %s", conflictColumn)
	}

	rows := collectRows(ec.Input, executors.StringProperty(node.Properties, "input_key", models.PortMain))
	if len(rows) == 0 {
		return models.SuccessResult(map[string]any{"rows_written": 0, "table": table}), nil
	}

	statement := buildInsert(table, columns, conflictColumn)

	var written int64

	for _, row := range rows {
		args := make([]any, len(columns))
		for i, column := range columns {
			args[i] = row[column]
		}

		affected, err := ec.Services.Database.Exec(ctx, statement, args...)
		if err != nil {
			return models.FailureResult(fmt.Sprintf("failed to write row to %s: %v", table, err)), nil
		}

		written += affected
	}

	ec.Logger.InfoContext(ctx, "Wrote rows to database", "table", table, "rows", written)

	return models.SuccessResult(map[string]any{
		"rows_written": written,
		"table":        table,
	}), nil
}

func columnNames(raw any) ([]string, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("columns must be a list of strings")
	}

	columns := make([]string, 0, len(items))

	for _, item := range items {
		column, ok := item.(string)
		if !ok || !identifierPattern.MatchString(column) {
			return nil, fmt.Errorf("invalid column name: %v", item)
		}

		columns = append(columns, column)
	}

	return columns, nil
}

// collectRows normalizes the input value under key into a list of row maps.
func collectRows(input map[string]any, key string) []map[string]any {
	value, ok := input[key]
	if !ok {
		return nil
	}

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
		// A single upstream payload may carry its rows under "rows".
		if nested, ok := typed["rows"]; ok {
			return collectRows(map[string]any{key: nested}, key)
		}

		return []map[string]any{typed}
	default:
		return nil
	}
}

func buildInsert(table string, columns []string, conflictColumn string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	statement := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	if conflictColumn == "" {
		return statement
	}

	updates := make([]string, 0, len(columns))

	for _, column := range columns {
		if column == conflictColumn {
			continue
		}

		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
	}

	return fmt.Sprintf("%s ON CONFLICT (%s) DO UPDATE SET %s",
		statement, conflictColumn, strings.Join(updates, ", "))
}
