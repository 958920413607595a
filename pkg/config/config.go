// Package config loads codequest settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/codequest/pkg/llm"
)

// Config is the codequest configuration file.
type Config struct {
	// Address the web front-end listens on (e.g., ":8080")
	Listen string `toml:"listen"`

	Debug bool `toml:"debug"`

	// Templates is an optional directory of page templates that replaces
	// the built-in pages and is reloaded on change.
	Templates string `toml:"templates"`

	Ollama Ollama `toml:"ollama"`

	// Generation parameters applied to every article
	Generation llm.Parameters `toml:"generation"`
}

// Ollama locates the model runtime.
type Ollama struct {
	URL       string `toml:"url"`
	Model     string `toml:"model"`
	KeepAlive string `toml:"keep_alive"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen: ":8080",
		Ollama: Ollama{
			URL:       "http://localhost:11434",
			Model:     "llama3.2",
			KeepAlive: "5m",
		},
		Generation: llm.DefaultParameters(),
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("could not decode %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error

	if c.Listen == "" {
		errs = append(errs, errors.New("listen must not be empty"))
	}
	if c.Ollama.URL == "" {
		errs = append(errs, errors.New("ollama.url must not be empty"))
	}
	if c.Ollama.Model == "" {
		errs = append(errs, errors.New("ollama.model must not be empty"))
	}
	if _, err := c.KeepAlive(); err != nil {
		errs = append(errs, err)
	}

	g := c.Generation
	if g.MaxLength < 1 {
		errs = append(errs, fmt.Errorf("generation.max_length must be positive, got %d", g.MaxLength))
	}
	if g.SampleCount < 1 {
		errs = append(errs, fmt.Errorf("generation.sample_count must be positive, got %d", g.SampleCount))
	}
	if g.Temperature < 0 {
		errs = append(errs, fmt.Errorf("generation.temperature must not be negative, got %g", g.Temperature))
	}
	if g.TopK < 0 {
		errs = append(errs, fmt.Errorf("generation.top_k must not be negative, got %d", g.TopK))
	}

	return errors.Join(errs...)
}

// KeepAlive parses ollama.keep_alive. Empty means the runtime default.
func (c Config) KeepAlive() (time.Duration, error) {
	if c.Ollama.KeepAlive == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(c.Ollama.KeepAlive)
	if err != nil {
		return 0, fmt.Errorf("ollama.keep_alive: %w", err)
	}
	return d, nil
}
