// Package generator owns the process-wide model handle. The model is loaded
// lazily on first use and can be released explicitly; every transition is
// serialized so a release never races a load or an in-flight generation.
package generator

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	"github.com/papercomputeco/codequest/pkg/llm"
	"github.com/papercomputeco/codequest/pkg/metrics"
)

// State is the lifecycle state of a Handle.
type State int

const (
	Unloaded State = iota
	Loaded
)

func (s State) String() string {
	if s == Loaded {
		return "loaded"
	}
	return "unloaded"
}

// Model is a loaded generator that can be evicted from memory.
type Model interface {
	llm.Generator

	// Unload releases the model and any accelerator memory it holds.
	Unload(ctx context.Context) error
}

// Loader creates a Model on demand.
type Loader interface {
	Load(ctx context.Context) (Model, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) (Model, error)

func (f LoaderFunc) Load(ctx context.Context) (Model, error) {
	return f(ctx)
}

// Handle owns at most one loaded Model.
//
// Leases hold the read side of mu for the duration of a generation; load and
// release take the write side.
type Handle struct {
	loader Loader
	logger *zap.Logger

	mu    sync.RWMutex
	model Model
}

// NewHandle returns an unloaded handle.
func NewHandle(loader Loader, logger *zap.Logger) *Handle {
	return &Handle{
		loader: loader,
		logger: logger,
	}
}

// State reports whether a model is currently loaded.
func (h *Handle) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.model == nil {
		return Unloaded
	}
	return Loaded
}

// Acquire returns a lease on the loaded model, loading it first if needed.
// The caller must Close the lease; Release blocks until it does.
func (h *Handle) Acquire(ctx context.Context) (*Lease, error) {
	for {
		h.mu.RLock()
		if h.model != nil {
			return &Lease{model: h.model, unlock: h.mu.RUnlock}, nil
		}
		h.mu.RUnlock()

		if err := h.load(ctx); err != nil {
			return nil, err
		}
	}
}

func (h *Handle) load(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Another caller may have loaded it while we waited for the lock.
	if h.model != nil {
		return nil
	}

	h.logger.Info("loading model")
	model, err := h.loader.Load(ctx)
	if err != nil {
		metrics.ModelTransitions.WithLabelValues("load", "error").Inc()
		return fmt.Errorf("load model: %w", err)
	}

	h.model = model
	metrics.ModelTransitions.WithLabelValues("load", "ok").Inc()
	metrics.ModelLoaded.Set(1)
	h.logger.Info("model loaded")
	return nil
}

// Release unloads the model, if any, and forces the runtime to reclaim the
// memory that referenced it. Releasing an unloaded handle is a no-op.
//
// The reference is dropped even when unloading fails, so a later Acquire
// loads a fresh model.
func (h *Handle) Release(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.model == nil {
		h.logger.Debug("release requested with no model loaded")
		return nil
	}

	err := h.model.Unload(ctx)
	h.model = nil
	metrics.ModelLoaded.Set(0)

	runtime.GC()
	debug.FreeOSMemory()

	if err != nil {
		metrics.ModelTransitions.WithLabelValues("unload", "error").Inc()
		h.logger.Warn("model unload failed", zap.Error(err))
		return fmt.Errorf("unload model: %w", err)
	}

	metrics.ModelTransitions.WithLabelValues("unload", "ok").Inc()
	h.logger.Info("model unloaded")
	return nil
}

// Lease is shared access to a loaded model.
type Lease struct {
	model  Model
	unlock func()
	once   sync.Once
}

// Generate runs the leased model.
func (l *Lease) Generate(ctx context.Context, prompt string, params llm.Parameters) ([]llm.Generation, error) {
	return l.model.Generate(ctx, prompt, params)
}

// Close ends the lease. Calling it more than once is harmless.
func (l *Lease) Close() {
	l.once.Do(l.unlock)
}
