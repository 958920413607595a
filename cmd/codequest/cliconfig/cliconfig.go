// Package cliconfig resolves the configuration shared by codequest
// subcommands and builds the article pipeline from it.
package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/codequest/pkg/article"
	"github.com/papercomputeco/codequest/pkg/config"
	"github.com/papercomputeco/codequest/pkg/generator"
	"github.com/papercomputeco/codequest/pkg/ollama"
)

// EnvConfigPath names the environment variable consulted when no --config
// flag is given.
const EnvConfigPath = "CODEQUEST_CONFIG"

// Flags are the runtime flags every model-using subcommand accepts.
type Flags struct {
	ConfigPath string
	Upstream   string
	Model      string
	Debug      bool
}

// Register adds the flags to cmd.
func (f *Flags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.ConfigPath, "config", "c", "", "Path to TOML config file")
	cmd.Flags().StringVar(&f.Upstream, "upstream", "", "Ollama-compatible runtime URL (overrides config)")
	cmd.Flags().StringVar(&f.Model, "model", "", "Model name (overrides config)")
	cmd.Flags().BoolVar(&f.Debug, "debug", false, "Enable debug logging")
}

// Load resolves and reads the config file, then applies any flags that
// were set on cmd.
func (f *Flags) Load(cmd *cobra.Command) (config.Config, error) {
	path, err := ResolveConfigPath(f.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("could not resolve config: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if cmd.Flags().Changed("upstream") {
		cfg.Ollama.URL = f.Upstream
	}
	if cmd.Flags().Changed("model") {
		cfg.Ollama.Model = f.Model
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = f.Debug
	}

	return cfg, cfg.Validate()
}

// ResolveConfigPath picks the config file: the flag value, then
// $CODEQUEST_CONFIG, then ~/.codequest/config.toml when it exists. An empty
// result means built-in defaults.
func ResolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	if env := os.Getenv(EnvConfigPath); env != "" {
		return env, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil
	}

	path := filepath.Join(home, ".codequest", "config.toml")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("could not stat %s: %w", path, err)
	}

	return path, nil
}

// NewService wires an article service to the configured runtime. The model
// is not loaded until the first generation.
func NewService(cfg config.Config, logger *zap.Logger) (*article.Service, error) {
	keepAlive, err := cfg.KeepAlive()
	if err != nil {
		return nil, err
	}

	client := ollama.New(ollama.Config{
		URL:       cfg.Ollama.URL,
		Model:     cfg.Ollama.Model,
		KeepAlive: keepAlive,
	}, logger)

	handle := generator.NewHandle(client, logger)
	return article.NewService(handle, cfg.Generation, logger), nil
}
