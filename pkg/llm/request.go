package llm

// GenerateRequest is a single-prompt completion request (Ollama /api/generate).
type GenerateRequest struct {
	Model  string `json:"model"`            // Model name (e.g., "llama3.2")
	Prompt string `json:"prompt,omitempty"` // Empty prompts only load the model
	Stream *bool  `json:"stream,omitempty"` // Always false here; the runtime defaults to true

	// Generation options
	Options *Options `json:"options,omitempty"`

	// How long the runtime keeps the model in memory. "0" unloads it.
	KeepAlive string `json:"keep_alive,omitempty"`
}
