package servecmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/codequest/cmd/codequest/cliconfig"
	"github.com/papercomputeco/codequest/pkg/logger"
	"github.com/papercomputeco/codequest/pkg/templates"
	"github.com/papercomputeco/codequest/server"
)

const serveLongDesc string = `Run the codequest web server.

Serves the article form on /, the JSON API on /api/generate, model
teardown on /clear, plus /health and /metrics. The model is loaded on
the first request and stays resident until /clear or shutdown.

Examples:
  codequest serve
  codequest serve --listen :9090 --model llama3.2
  codequest serve --templates ./pages --upstream http://gpu-box:11434`

const serveShortDesc string = "Run the article generator web server"

const shutdownTimeout = 10 * time.Second

type serveCommander struct {
	flags     cliconfig.Flags
	listen    string
	templates string
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmder.flags.Register(cmd)
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (overrides config)")
	cmd.Flags().StringVar(&cmder.templates, "templates", "", "Directory of HTML template overrides (overrides config)")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := c.flags.Load(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("listen") {
		cfg.Listen = c.listen
	}
	if cmd.Flags().Changed("templates") {
		cfg.Templates = c.templates
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Debug)
	defer func() { _ = log.Sync() }()

	articles, err := cliconfig.NewService(cfg, log)
	if err != nil {
		return err
	}

	pages, err := templates.New(cfg.Templates, log)
	if err != nil {
		return fmt.Errorf("could not load templates: %w", err)
	}

	srv := server.New(server.Config{ListenAddr: cfg.Listen}, articles, pages, log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Run)

	g.Go(func() error {
		return pages.Watch(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.ShutdownWithContext(shutdownCtx)
	})

	err = g.Wait()

	if clearErr := articles.Clear(context.Background()); clearErr != nil {
		log.Warn("failed to release model", zap.Error(clearErr))
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
