// Package generatortest provides an in-process model for tests.
package generatortest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/papercomputeco/codequest/pkg/generator"
	"github.com/papercomputeco/codequest/pkg/llm"
)

// Loader loads models that answer every prompt with the prompt followed by
// Continuation.
type Loader struct {
	Continuation string

	LoadErr     error
	GenerateErr error

	// NoSamples makes Generate succeed with an empty result.
	NoSamples bool

	loads   atomic.Int32
	unloads atomic.Int32

	mu      sync.Mutex
	prompts []string
}

var _ generator.Loader = (*Loader)(nil)

func (l *Loader) Load(context.Context) (generator.Model, error) {
	l.loads.Add(1)
	if l.LoadErr != nil {
		return nil, l.LoadErr
	}
	return &model{loader: l}, nil
}

// Loads is the number of Load calls so far.
func (l *Loader) Loads() int { return int(l.loads.Load()) }

// Unloads is the number of Unload calls so far.
func (l *Loader) Unloads() int { return int(l.unloads.Load()) }

// Prompts returns every prompt generated from, oldest first.
func (l *Loader) Prompts() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.prompts...)
}

type model struct {
	loader *Loader
}

func (m *model) Generate(ctx context.Context, prompt string, params llm.Parameters) ([]llm.Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.loader.mu.Lock()
	m.loader.prompts = append(m.loader.prompts, prompt)
	m.loader.mu.Unlock()

	if m.loader.GenerateErr != nil {
		return nil, m.loader.GenerateErr
	}
	if m.loader.NoSamples {
		return nil, nil
	}

	n := params.SampleCount
	if n < 1 {
		n = 1
	}
	gens := make([]llm.Generation, n)
	for i := range gens {
		gens[i] = llm.Generation{Text: prompt + m.loader.Continuation}
	}
	return gens, nil
}

func (m *model) Unload(context.Context) error {
	m.loader.unloads.Add(1)
	return nil
}
