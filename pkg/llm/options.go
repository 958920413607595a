package llm

// Options contains model inference parameters.
type Options struct {
	// Sampling parameters
	Temperature *float64 `json:"temperature,omitempty"` // Creativity (0.0-2.0)
	TopK        *int     `json:"top_k,omitempty"`       // Top-k sampling

	// Length parameters
	NumPredict *int `json:"num_predict,omitempty"` // Max tokens to generate
}
