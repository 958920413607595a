package mcpcmder

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/codequest/cmd/codequest/cliconfig"
	"github.com/papercomputeco/codequest/mcpserver"
	"github.com/papercomputeco/codequest/pkg/logger"
)

const mcpLongDesc string = `Serve codequest as a Model Context Protocol server over stdio.

Exposes two tools: generate_article, which runs the full article
pipeline against the configured model, and clean_text, which only
post-processes text. Logs go to stderr so stdout carries protocol
messages only. The model is released when the client disconnects.

Examples:
  codequest mcp
  codequest mcp --model llama3.2 --upstream http://gpu-box:11434`

const mcpShortDesc string = "Run an MCP server over stdio"

type mcpCommander struct {
	flags   cliconfig.Flags
	version string
}

func NewMCPCmd(version string) *cobra.Command {
	cmder := &mcpCommander{version: version}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd, &mcp.StdioTransport{})
		},
	}

	cmder.flags.Register(cmd)

	return cmd
}

func (c *mcpCommander) run(ctx context.Context, cmd *cobra.Command, transport mcp.Transport) error {
	cfg, err := c.flags.Load(cmd)
	if err != nil {
		return err
	}

	log := logger.NewLoggerTo(cmd.ErrOrStderr(), cfg.Debug)
	defer func() { _ = log.Sync() }()

	articles, err := cliconfig.NewService(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := articles.Clear(context.Background()); err != nil {
			log.Warn("failed to release model", zap.Error(err))
		}
	}()

	log.Info("starting MCP server", zap.String("model", cfg.Ollama.Model))

	if err := mcpserver.New(articles, c.version, log).Run(ctx, transport); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
