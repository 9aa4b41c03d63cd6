// Package template renders dynamic node properties. Property values may
// reference the node's input, workflow variables and the environment through
// Go text/template expressions; rendered output that looks like JSON is
// decoded so templated properties can produce structured values.
package template

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/protocol"
)

// RenderWithContext renders a template string against one node's execution
// context. Exposed data: .input (the node's collected input map), .variables
// (workflow variables, also available as .vars), .env, and .run with the
// run and workflow ids.
func RenderWithContext(input string, ec *protocol.ExecutionContext) (any, error) {
	data := map[string]any{
		"input":     ec.Input,
		"variables": ec.Variables,
		"vars":      ec.Variables,
		"env":       envVars(),
		"run": map[string]any{
			"id":          ec.RunID,
			"workflow_id": ec.WorkflowID,
			"node_id":     ec.NodeID,
		},
	}

	return Render(input, data)
}

// Render renders a template string against arbitrary data. When the rendered
// text is a JSON object or array it is decoded and returned as structured
// data instead of a string.
func Render(templateStr string, data any) (any, error) {
	tmpl, err := template.
		New("property").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
			"rand": func(max int) int {
				if max <= 0 {
					return 0
				}

				num := make([]byte, 1)
				if _, err := rand.Read(num); err != nil {
					return 0
				}

				return int(num[0]) % max
			},
		}).Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	result := strings.TrimSpace(buf.String())

	if (strings.HasPrefix(result, "{") && strings.HasSuffix(result, "}")) ||
		(strings.HasPrefix(result, "[") && strings.HasSuffix(result, "]")) {
		var jsonResult any

		if err := json.Unmarshal([]byte(result), &jsonResult); err != nil {
			return nil, fmt.Errorf("failed to parse json '%s': %w", templateStr, err)
		}

		return jsonResult, nil
	}

	return result, nil
}

// RenderString renders a template whose output is used as a plain string.
// Structured output is re-encoded as JSON.
func RenderString(templateStr string, ec *protocol.ExecutionContext) (string, error) {
	rendered, err := RenderWithContext(templateStr, ec)
	if err != nil {
		return "", err
	}

	if str, ok := rendered.(string); ok {
		return str, nil
	}

	encoded, err := json.Marshal(rendered)
	if err != nil {
		return "", fmt.Errorf("template '%s' did not render to a string", templateStr)
	}

	return string(encoded), nil
}

func envVars() map[string]string {
	env := make(map[string]string)

	for _, pair := range os.Environ() {
		if key, value, found := strings.Cut(pair, "="); found {
			env[key] = value
		}
	}

	return env
}
