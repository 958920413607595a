package llm

import "time"

// GenerateResponse is a non-streaming completion response (Ollama /api/generate).
type GenerateResponse struct {
	Model      string    `json:"model"`                 // Model that generated the response
	CreatedAt  time.Time `json:"created_at"`            // Response timestamp
	Response   string    `json:"response"`              // Generated continuation, without the prompt
	Done       bool      `json:"done"`                  // Whether generation is complete
	DoneReason string    `json:"done_reason,omitempty"` // "stop", "length", "load" or "unload"

	// Metrics (only present when done=true)
	TotalDuration   int64 `json:"total_duration,omitempty"`    // Total time in nanoseconds
	LoadDuration    int64 `json:"load_duration,omitempty"`     // Model load time
	PromptEvalCount int   `json:"prompt_eval_count,omitempty"` // Tokens in prompt
	EvalCount       int   `json:"eval_count,omitempty"`        // Generated tokens
	EvalDuration    int64 `json:"eval_duration,omitempty"`     // Generation time
}
