package extensions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reactivestate/atoms"
)

// GraphDebugExtension tracks which keys resolved successfully and which
// failed, logging a dependency-graph-shaped diagnostic through slog whenever
// one fails. Ported close to the teacher's extensions/graph_debug.go
// GraphDebugExtension, retargeted from tracking executors to tracking atom
// keys.
type GraphDebugExtension struct {
	atoms.BaseExtension

	logger   *slog.Logger
	resolved map[string]struct{}
	failed   map[string]struct{}
}

// NewGraphDebugExtension constructs a GraphDebugExtension logging through
// handler.
func NewGraphDebugExtension(handler slog.Handler) *GraphDebugExtension {
	return &GraphDebugExtension{
		logger:   slog.New(handler),
		resolved: make(map[string]struct{}),
		failed:   make(map[string]struct{}),
	}
}

func (GraphDebugExtension) Name() string { return "graph-debug" }
func (GraphDebugExtension) Order() int   { return 50 }

func (e *GraphDebugExtension) Wrap(op atoms.Operation, next func() (any, error)) (any, error) {
	result, err := next()
	if err != nil {
		e.failed[op.Key] = struct{}{}
	} else {
		e.resolved[op.Key] = struct{}{}
	}
	return result, err
}

func (e *GraphDebugExtension) OnError(op atoms.Operation, err error) {
	e.logger.Error("atom evaluation failed",
		"key", op.Key,
		"operation", op.Kind.String(),
		"error", err,
		"dependency_graph", e.formatDependencyGraph(op.Store),
	)
}

func (e *GraphDebugExtension) OnRelease(key string) {
	delete(e.resolved, key)
	delete(e.failed, key)
	e.logger.Debug("atom released", "key", key)
}

// formatDependencyGraph renders op.Store's current graph as a DOT string —
// this finishes the thread the teacher's own snapshot left dangling: its
// graph_debug.go called scope.ExportDependencyGraph(), a method that was
// never actually defined anywhere in the retrieved source. Snapshot here
// really does carry a graph description, via GraphDescription.
func (e *GraphDebugExtension) formatDependencyGraph(store *atoms.StoreContext) string {
	if store == nil {
		return "digraph {}"
	}
	return store.Snapshot().GraphDescription()
}

// SilentHandler discards every log record — used in tests so assertions
// aren't drowned in diagnostic noise, grounded on the teacher's
// extensions/graph_debug.go SilentHandler.
type SilentHandler struct{}

func (SilentHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (SilentHandler) Handle(context.Context, slog.Record) error { return nil }
func (h SilentHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h SilentHandler) WithGroup(string) slog.Handler           { return h }

// HumanHandler renders records as a compact, box-drawn block intended for
// terminal use during development, grounded on the teacher's HumanHandler.
type HumanHandler struct{}

func (HumanHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h HumanHandler) Handle(_ context.Context, r slog.Record) error {
	fmt.Println("┌─ atoms ──────────────────────────────")
	fmt.Printf("│ %s: %s\n", r.Level, r.Message)
	r.Attrs(func(a slog.Attr) bool {
		fmt.Printf("│   %s = %v\n", a.Key, a.Value)
		return true
	})
	fmt.Println("└──────────────────────────────────────")
	return nil
}

func (h HumanHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h HumanHandler) WithGroup(string) slog.Handler      { return h }
