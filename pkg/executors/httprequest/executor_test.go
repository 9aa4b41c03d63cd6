package httprequest

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/protocol"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/services"
)

type fakeHTTPService struct {
	lastRequest services.HTTPRequest
	response    *services.HTTPResponse
	err         error
}

func (f *fakeHTTPService) Do(_ context.Context, req services.HTTPRequest) (*services.HTTPResponse, error) {
	f.lastRequest = req

	return f.response, f.err
}

func executionContext(httpService services.HTTPService, input map[string]any) protocol.ExecutionContext {
	return protocol.ExecutionContext{
		NodeID:     "http-1",
		RunID:      "run-test1234",
		WorkflowID: "wf-1",
		Input:      input,
		Variables:  map[string]any{"api_base": "https://api.internal"},
		Services:   &services.Container{HTTP: httpService},
		Logger:     slog.New(slog.DiscardHandler),
	}
}

func TestHTTPRequestSuccess(t *testing.T) {
	fake := &fakeHTTPService{
		response: &services.HTTPResponse{
			StatusCode: 200,
			Body:       `{"ok": true}`,
			JSON:       map[string]any{"ok": true},
		},
	}

	executor := NewExecutor()
	node := &models.WorkflowNode{
		ID:       "http-1",
		NodeType: NodeType,
		Properties: map[string]any{
			"url":    "{{.vars.api_base}}/items",
			"method": "POST",
			"body":   `{"q": "{{.input.main.query}}"}`,
			"headers": map[string]any{
				"X-Request-ID": "{{.run.id}}",
			},
			"timeout": float64(10),
		},
	}

	ec := executionContext(fake, map[string]any{
		"main": map[string]any{"query": "inventory"},
	})

	result, err := executor.Execute(context.Background(), node, ec)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, "https://api.internal/items", fake.lastRequest.URL)
	assert.Equal(t, http.MethodPost, fake.lastRequest.Method)
	assert.JSONEq(t, `{"q": "inventory"}`, fake.lastRequest.Body)
	assert.Equal(t, "run-test1234", fake.lastRequest.Headers["X-Request-ID"])

	assert.Equal(t, 200, result.Data["status_code"])
	assert.Equal(t, map[string]any{"ok": true}, result.Data["json"])

	// The payload shows up on both the success and the main port.
	assert.Equal(t, result.Data, result.OutputPorts[OutputPortSuccess])
	assert.Equal(t, result.Data, result.OutputPorts[models.PortMain])
}

func TestHTTPRequestFailurePublishesErrorPort(t *testing.T) {
	fake := &fakeHTTPService{
		err: &services.HTTPError{StatusCode: 503, Message: "unavailable"},
	}

	executor := NewExecutor()
	node := &models.WorkflowNode{
		ID:         "http-1",
		NodeType:   NodeType,
		Properties: map[string]any{"url": "https://example.com"},
	}

	result, err := executor.Execute(context.Background(), node, executionContext(fake, nil))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "503")

	errorPort, ok := result.OutputPorts[OutputPortError].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", errorPort["url"])
}

func TestHTTPRequestMissingURL(t *testing.T) {
	executor := NewExecutor()
	node := &models.WorkflowNode{ID: "http-1", NodeType: NodeType, Properties: map[string]any{}}

	_, err := executor.Execute(context.Background(), node, executionContext(&fakeHTTPService{}, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid node properties")
}
