// Package ollama loads, runs and unloads a model on an Ollama-compatible
// runtime over its HTTP API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/codequest/pkg/generator"
	"github.com/papercomputeco/codequest/pkg/llm"
)

// DefaultKeepAlive is how long the runtime keeps a loaded model resident
// between requests.
const DefaultKeepAlive = 5 * time.Minute

// ErrTruncationRequired is returned when generation is requested with
// truncation disabled. The runtime always truncates context that does not
// fit.
var ErrTruncationRequired = errors.New("ollama: runtime cannot disable prompt truncation")

// Config configures a Client.
type Config struct {
	// Runtime base URL (e.g., "http://localhost:11434")
	URL string

	// Model to load and generate with (e.g., "llama3.2")
	Model string

	// KeepAlive is sent with every load and generation request.
	// Zero means DefaultKeepAlive.
	KeepAlive time.Duration
}

// Client loads models on an Ollama-compatible runtime. It implements
// generator.Loader.
type Client struct {
	config     Config
	logger     *zap.Logger
	httpClient *http.Client
}

// New creates a new Client.
func New(config Config, logger *zap.Logger) *Client {
	config.URL = strings.TrimRight(config.URL, "/")
	if config.KeepAlive == 0 {
		config.KeepAlive = DefaultKeepAlive
	}

	return &Client{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			// Generating a full article on CPU can take minutes
			Timeout: 5 * time.Minute,
		},
	}
}

// Load asks the runtime to bring the model into memory. An empty prompt
// makes the runtime load the model without generating.
func (c *Client) Load(ctx context.Context) (generator.Model, error) {
	resp, err := c.generate(ctx, &llm.GenerateRequest{
		Model:     c.config.Model,
		KeepAlive: c.config.KeepAlive.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.config.Model, err)
	}

	c.logger.Debug("model resident",
		zap.String("model", c.config.Model),
		zap.Duration("load_duration", time.Duration(resp.LoadDuration)),
	)

	return &Model{client: c}, nil
}

// Model is a model resident in the runtime.
type Model struct {
	client *Client
}

// Generate runs params.SampleCount sequential completions. Each returned
// text is the prompt followed by the model's continuation.
func (m *Model) Generate(ctx context.Context, prompt string, params llm.Parameters) ([]llm.Generation, error) {
	if !params.Truncation {
		return nil, ErrTruncationRequired
	}

	samples := params.SampleCount
	if samples < 1 {
		samples = 1
	}

	gens := make([]llm.Generation, 0, samples)
	for i := 0; i < samples; i++ {
		resp, err := m.client.generate(ctx, &llm.GenerateRequest{
			Model:     m.client.config.Model,
			Prompt:    prompt,
			Options:   params.Options(),
			KeepAlive: m.client.config.KeepAlive.String(),
		})
		if err != nil {
			return nil, fmt.Errorf("generate sample %d: %w", i, err)
		}

		m.client.logger.Debug("received generation",
			zap.String("model", resp.Model),
			zap.String("done_reason", resp.DoneReason),
			zap.Int("eval_count", resp.EvalCount),
			zap.String("content_preview", truncate(resp.Response, 100)),
		)

		gens = append(gens, llm.Generation{Text: prompt + resp.Response})
	}

	return gens, nil
}

// Unload evicts the model from the runtime, freeing its accelerator memory.
func (m *Model) Unload(ctx context.Context) error {
	_, err := m.client.generate(ctx, &llm.GenerateRequest{
		Model:     m.client.config.Model,
		KeepAlive: "0",
	})
	if err != nil {
		return fmt.Errorf("unload %s: %w", m.client.config.Model, err)
	}
	return nil
}

// generate sends a non-streaming request to the runtime's generate endpoint.
func (c *Client) generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	streaming := false
	req.Stream = &streaming

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	upstreamURL := c.config.URL + "/api/generate"
	c.logger.Debug("sending request to runtime",
		zap.String("url", upstreamURL),
		zap.Int("body_size", len(reqBody)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, upstreamURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr llm.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("runtime returned %d: %s", httpResp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("runtime returned %d: %s", httpResp.StatusCode, string(body))
	}

	var resp llm.GenerateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &resp, nil
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
