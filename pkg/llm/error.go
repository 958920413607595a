// Package llm holds the representations of text generation requests and
// responses exchanged with an Ollama-compatible model runtime, plus the
// fixed generation parameters used by codequest.
package llm

// ErrorResponse is the error body used both by the runtime and by the
// codequest JSON API.
type ErrorResponse struct {
	Error string `json:"error"`
}
