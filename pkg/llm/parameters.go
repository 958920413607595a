package llm

import "context"

// Parameters are the generation settings applied to every article. They are
// fixed for the lifetime of the process.
type Parameters struct {
	MaxLength   int     `toml:"max_length"`
	SampleCount int     `toml:"sample_count"`
	Temperature float64 `toml:"temperature"`
	TopK        int     `toml:"top_k"`
	Truncation  bool    `toml:"truncation"`
}

// DefaultParameters returns the settings articles are generated with unless
// configuration overrides them.
func DefaultParameters() Parameters {
	return Parameters{
		MaxLength:   800,
		SampleCount: 1,
		Temperature: 0.7,
		TopK:        40,
		Truncation:  true,
	}
}

// Options converts the parameters into runtime inference options.
func (p Parameters) Options() *Options {
	maxLength := p.MaxLength
	temperature := p.Temperature
	topK := p.TopK
	return &Options{
		NumPredict:  &maxLength,
		Temperature: &temperature,
		TopK:        &topK,
	}
}

// Generation is one generated sample. Text starts with the prompt it was
// generated from.
type Generation struct {
	Text string `json:"text"`
}

// Generator produces continuations for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, params Parameters) ([]Generation, error)
}
