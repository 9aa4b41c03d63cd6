// Package registry maps node types to executor instances. Registration may
// happen after the engine has started accepting work: bulk loaders run
// asynchronously and lookups wait for any in-flight load before resolving, so
// a run started during bootstrap never races a not-yet-registered type.
package registry

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/protocol"
)

type Registry struct {
	logger *slog.Logger

	mu        sync.RWMutex
	executors map[string]protocol.Executor

	loading sync.WaitGroup
}

// NewRegistry creates an empty executor registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		logger:    logger,
		executors: make(map[string]protocol.Executor),
	}
}

// Register binds an executor to a node type. Registration is idempotent; the
// last registration for a type wins. Registering a type no definition uses is
// not an error.
func (r *Registry) Register(nodeType string, executor protocol.Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.executors[nodeType] = executor
}

// RegisterLoader runs a bulk loader in the background. Loader failures are
// logged, never fatal: the affected node types simply stay unresolvable and
// surface as per-node failures at dispatch time.
func (r *Registry) RegisterLoader(ctx context.Context, loader protocol.ExecutorLoader) {
	r.loading.Add(1)

	go func() {
		defer r.loading.Done()

		executors, err := loader(ctx)
		if err != nil {
			r.logger.ErrorContext(ctx, "Executor loader failed, node types remain unregistered", "error", err)

			return
		}

		for _, executor := range executors {
			r.Register(executor.Type(), executor)
		}
	}()
}

// Executor resolves the executor for a node type. It waits for in-flight
// bulk loaders first, bounded by ctx. The boolean is false when the type has
// no registered executor; turning that into an error is the caller's call,
// since an unknown type only matters once a node of that type is dispatched.
func (r *Registry) Executor(ctx context.Context, nodeType string) (protocol.Executor, bool) {
	loaded := make(chan struct{})

	go func() {
		r.loading.Wait()
		close(loaded)
	}()

	select {
	case <-loaded:
	case <-ctx.Done():
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	executor, ok := r.executors[nodeType]

	return executor, ok
}

// Types returns the registered node types, sorted. Loaders still in flight
// are not reflected.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.executors))
	for nodeType := range r.executors {
		types = append(types, nodeType)
	}

	sort.Strings(types)

	return types
}
