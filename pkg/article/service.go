// Package article runs the full pipeline for one article: prompt
// construction, generation on the shared model handle and post-processing.
package article

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/codequest/pkg/generator"
	"github.com/papercomputeco/codequest/pkg/llm"
	"github.com/papercomputeco/codequest/pkg/metrics"
	"github.com/papercomputeco/codequest/pkg/postprocess"
	"github.com/papercomputeco/codequest/pkg/prompt"
)

// ErrGeneration wraps every failure that originates in the model. Callers
// report it to users as a generic failure.
var ErrGeneration = errors.New("article generation failed")

// Result is a finished article.
type Result struct {
	ID       string
	Prompt   string
	Content  string
	Audience postprocess.Audience
	Duration time.Duration
}

// Service generates articles against a shared model handle.
type Service struct {
	handle *generator.Handle
	params llm.Parameters
	logger *zap.Logger
}

// NewService creates a Service using params for every generation.
func NewService(handle *generator.Handle, params llm.Parameters, logger *zap.Logger) *Service {
	return &Service{
		handle: handle,
		params: params,
		logger: logger,
	}
}

// Generate writes an article for req. A malformed request yields a
// prompt.MissingFieldError; model failures wrap ErrGeneration.
func (s *Service) Generate(ctx context.Context, req prompt.Request) (*Result, error) {
	if err := prompt.Validate(req); err != nil {
		metrics.GenerationTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	startTime := time.Now()
	id := uuid.NewString()
	logger := s.logger.With(zap.String("request_id", id))

	p := prompt.Build(req)
	logger.Debug("generating article",
		zap.String("topic", req.Topic),
		zap.String("audience", req.Audience),
		zap.String("tone", req.Tone),
	)

	raw, err := s.generate(ctx, p)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("error").Inc()
		logger.Error("generation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	audience := postprocess.Classify(req.Audience)
	content := postprocess.Process(prompt.StripEcho(raw, p), req.Audience)
	duration := time.Since(startTime)

	metrics.GenerationTotal.WithLabelValues("ok").Inc()
	metrics.GenerationDuration.Observe(duration.Seconds())
	metrics.ContentLength.Observe(float64(len(content)))
	metrics.AudienceTotal.WithLabelValues(audience.String()).Inc()

	if content == "" {
		logger.Warn("generation produced no complete sentence")
	}
	logger.Info("article generated",
		zap.String("audience_category", audience.String()),
		zap.Int("content_bytes", len(content)),
		zap.Duration("duration", duration),
	)

	return &Result{
		ID:       id,
		Prompt:   p,
		Content:  content,
		Audience: audience,
		Duration: duration,
	}, nil
}

// generate returns the text of the first sample.
func (s *Service) generate(ctx context.Context, p string) (string, error) {
	lease, err := s.handle.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer lease.Close()

	gens, err := lease.Generate(ctx, p, s.params)
	if err != nil {
		return "", err
	}
	if len(gens) == 0 {
		return "", errors.New("model returned no samples")
	}
	return gens[0].Text, nil
}

// Clear unloads the model. It is safe to call when nothing is loaded.
func (s *Service) Clear(ctx context.Context) error {
	return s.handle.Release(ctx)
}

// State reports the model handle state.
func (s *Service) State() generator.State {
	return s.handle.State()
}
