package registry

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/protocol"
)

type stubExecutor struct {
	nodeType string
	marker   string
}

func (s *stubExecutor) Type() string { return s.nodeType }

func (s *stubExecutor) Execute(ctx context.Context, node *models.WorkflowNode, ec protocol.ExecutionContext) (*models.NodeExecutionResult, error) {
	return models.SuccessResult(map[string]any{"marker": s.marker}), nil
}

func (s *stubExecutor) Schema() map[string]any { return map[string]any{"type": "object"} }

func testRegistry() *Registry {
	return NewRegistry(slog.New(slog.DiscardHandler))
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	reg := testRegistry()
	reg.Register("log", &stubExecutor{nodeType: "log"})

	executor, ok := reg.Executor(context.Background(), "log")
	require.True(t, ok)
	assert.Equal(t, "log", executor.Type())

	_, ok = reg.Executor(context.Background(), "unknown")
	assert.False(t, ok)
}

func TestRegistryLastRegistrationWins(t *testing.T) {
	reg := testRegistry()
	reg.Register("log", &stubExecutor{nodeType: "log", marker: "first"})
	reg.Register("log", &stubExecutor{nodeType: "log", marker: "second"})

	executor, ok := reg.Executor(context.Background(), "log")
	require.True(t, ok)
	assert.Equal(t, "second", executor.(*stubExecutor).marker)
}

func TestRegistryResolveWaitsForLoader(t *testing.T) {
	reg := testRegistry()

	release := make(chan struct{})

	reg.RegisterLoader(context.Background(), func(ctx context.Context) ([]protocol.Executor, error) {
		<-release

		return []protocol.Executor{&stubExecutor{nodeType: "slowtype"}}, nil
	})

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()

	// Issued while the loader is still in flight; must not miss the type.
	executor, ok := reg.Executor(context.Background(), "slowtype")
	require.True(t, ok)
	assert.Equal(t, "slowtype", executor.Type())
}

func TestRegistryLoaderFailureIsNotFatal(t *testing.T) {
	reg := testRegistry()
	reg.Register("log", &stubExecutor{nodeType: "log"})

	reg.RegisterLoader(context.Background(), func(ctx context.Context) ([]protocol.Executor, error) {
		return nil, errors.New("plugin directory unreadable")
	})

	// Previously registered executors stay resolvable.
	_, ok := reg.Executor(context.Background(), "log")
	assert.True(t, ok)

	// The failed loader's types are simply absent.
	_, ok = reg.Executor(context.Background(), "broken")
	assert.False(t, ok)
}

func TestRegistryResolveHonorsContext(t *testing.T) {
	reg := testRegistry()

	loaderCtx, stopLoader := context.WithCancel(context.Background())
	defer stopLoader()

	reg.RegisterLoader(loaderCtx, func(ctx context.Context) ([]protocol.Executor, error) {
		<-ctx.Done()

		return nil, ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, ok := reg.Executor(ctx, "anything")
	assert.False(t, ok)
}

func TestRegistryTypes(t *testing.T) {
	reg := testRegistry()
	reg.Register("transform", &stubExecutor{nodeType: "transform"})
	reg.Register("httprequest", &stubExecutor{nodeType: "httprequest"})

	assert.Equal(t, []string{"httprequest", "transform"}, reg.Types())
}
