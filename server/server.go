// Package server provides the codequest web front-end: an article form, the
// generation endpoints and the model teardown endpoint.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/codequest/pkg/article"
	"github.com/papercomputeco/codequest/pkg/llm"
	"github.com/papercomputeco/codequest/pkg/prompt"
	"github.com/papercomputeco/codequest/pkg/templates"
)

// ClearedMessage is the body returned once the model has been released.
const ClearedMessage = "Memory cleared! <a href='/'>Back to Generator</a>"

const generationFailedMessage = "The article could not be generated. Please try again."

// Server serves the article generator over HTTP.
type Server struct {
	config   Config
	articles *article.Service
	pages    *templates.Renderer
	logger   *zap.Logger
	app      *fiber.App

	// baseCtx is the parent of every request context; cancelling it aborts
	// in-flight generations on shutdown.
	baseCtx context.Context
	cancel  context.CancelFunc
}

// GenerateResponse is the JSON body of a successful POST /api/generate.
type GenerateResponse struct {
	ID               string `json:"id"`
	Content          string `json:"content"`
	AudienceCategory string `json:"audience_category"`
	DurationMS       int64  `json:"duration_ms"`
}

// New creates a new Server.
func New(config Config, articles *article.Service, pages *templates.Renderer, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	baseCtx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:   config,
		articles: articles,
		pages:    pages,
		logger:   logger,
		app:      app,
		baseCtx:  baseCtx,
		cancel:   cancel,
	}

	app.Use(func(c *fiber.Ctx) error {
		c.SetUserContext(s.baseCtx)
		return c.Next()
	})

	// Article form
	app.Get("/", s.handleForm)
	app.Post("/", s.handleGenerate)
	app.Get("/clear", s.handleClear)

	// JSON API
	app.Post("/api/generate", s.handleAPIGenerate)

	// Health check and metrics
	app.Get("/health", s.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return s
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting web server", zap.String("listen", s.config.ListenAddr))

	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener serves on an existing listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting web server", zap.String("listen", listener.Addr().String()))

	return s.app.Listener(listener)
}

// Shutdown cancels in-flight generations and stops the server.
func (s *Server) Shutdown() error {
	return s.ShutdownWithContext(context.Background())
}

// ShutdownWithContext is Shutdown bounded by ctx.
func (s *Server) ShutdownWithContext(ctx context.Context) error {
	s.cancel()
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleForm(c *fiber.Ctx) error {
	return s.render(c, templates.Index, templates.IndexPage{})
}

// handleGenerate runs the pipeline for a submitted form and renders the
// article.
func (s *Server) handleGenerate(c *fiber.Ctx) error {
	req := prompt.Request{
		Topic:    c.FormValue("topic"),
		Audience: c.FormValue("audience"),
		Tone:     c.FormValue("tone"),
	}

	result, err := s.articles.Generate(c.UserContext(), req)

	var missing prompt.MissingFieldError
	switch {
	case errors.As(err, &missing):
		c.Status(fiber.StatusBadRequest)
		return s.render(c, templates.Index, templates.IndexPage{Request: req, Error: missing.Error()})
	case err != nil:
		c.Status(fiber.StatusBadGateway)
		return s.render(c, templates.Error, templates.ErrorPage{Error: generationFailedMessage})
	}

	return s.render(c, templates.Result, templates.ResultPage{Content: result.Content})
}

// handleAPIGenerate is handleGenerate with JSON in and out.
func (s *Server) handleAPIGenerate(c *fiber.Ctx) error {
	var req prompt.Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Debug("failed to parse request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	result, err := s.articles.Generate(c.UserContext(), req)

	var missing prompt.MissingFieldError
	switch {
	case errors.As(err, &missing):
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: missing.Error()})
	case err != nil:
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: generationFailedMessage})
	}

	return c.JSON(GenerateResponse{
		ID:               result.ID,
		Content:          result.Content,
		AudienceCategory: result.Audience.String(),
		DurationMS:       result.Duration.Milliseconds(),
	})
}

// handleClear releases the model. Clearing twice is fine.
func (s *Server) handleClear(c *fiber.Ctx) error {
	if err := s.articles.Clear(c.UserContext()); err != nil {
		s.logger.Error("failed to clear model", zap.Error(err))
		c.Status(fiber.StatusInternalServerError)
		c.Type("html", "utf-8")
		return c.SendString("Could not clear memory. <a href='/'>Back to Generator</a>")
	}

	c.Type("html", "utf-8")
	return c.SendString(ClearedMessage)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(map[string]string{
		"status": "ok",
		"model":  s.articles.State().String(),
	})
}

func (s *Server) render(c *fiber.Ctx, name string, data any) error {
	var buf bytes.Buffer
	if err := s.pages.Render(&buf, name, data); err != nil {
		s.logger.Error("failed to render page", zap.String("page", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
