// Package mcpserver exposes article generation and text cleanup as Model
// Context Protocol tools.
package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/codequest/pkg/article"
	"github.com/papercomputeco/codequest/pkg/postprocess"
	"github.com/papercomputeco/codequest/pkg/prompt"
)

// Tool names.
const (
	GenerateArticleTool = "generate_article"
	CleanTextTool       = "clean_text"
)

// GenerateArticleInput is the argument of generate_article.
type GenerateArticleInput struct {
	Topic    string `json:"topic" jsonschema:"what the article is about"`
	Audience string `json:"audience" jsonschema:"who the article is for; mentions of millennials or professionals adjust the wording"`
	Tone     string `json:"tone" jsonschema:"writing tone, e.g. friendly or formal"`
}

// GenerateArticleOutput is the result of generate_article.
type GenerateArticleOutput struct {
	Content          string `json:"content" jsonschema:"cleaned article text; empty when the model produced no complete sentence"`
	AudienceCategory string `json:"audience_category" jsonschema:"millennials, professionals or other"`
}

// CleanTextInput is the argument of clean_text.
type CleanTextInput struct {
	Text     string `json:"text" jsonschema:"raw generated text"`
	Audience string `json:"audience,omitempty" jsonschema:"optional audience used for keyword substitution"`
}

// CleanTextOutput is the result of clean_text.
type CleanTextOutput struct {
	Content string `json:"content" jsonschema:"deduplicated text made of complete sentences"`
}

// Server holds the tool handlers.
type Server struct {
	articles *article.Service
	logger   *zap.Logger
}

// New returns an MCP server with both tools registered.
func New(articles *article.Service, version string, logger *zap.Logger) *mcp.Server {
	s := &Server{
		articles: articles,
		logger:   logger,
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "codequest", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        GenerateArticleTool,
		Description: "Write a roughly 400-word article about a topic for an audience in a given tone.",
	}, s.generateArticle)

	mcp.AddTool(server, &mcp.Tool{
		Name:        CleanTextTool,
		Description: "Drop incomplete and repeated sentences from text and adjust wording for an audience.",
	}, s.cleanText)

	return server
}

func (s *Server) generateArticle(ctx context.Context, _ *mcp.CallToolRequest, in GenerateArticleInput) (*mcp.CallToolResult, GenerateArticleOutput, error) {
	result, err := s.articles.Generate(ctx, prompt.Request{
		Topic:    in.Topic,
		Audience: in.Audience,
		Tone:     in.Tone,
	})

	var missing prompt.MissingFieldError
	switch {
	case errors.As(err, &missing):
		return nil, GenerateArticleOutput{}, missing
	case err != nil:
		s.logger.Error("tool call failed", zap.String("tool", GenerateArticleTool), zap.Error(err))
		return nil, GenerateArticleOutput{}, fmt.Errorf("%w; try again", article.ErrGeneration)
	}

	return nil, GenerateArticleOutput{
		Content:          result.Content,
		AudienceCategory: result.Audience.String(),
	}, nil
}

func (s *Server) cleanText(_ context.Context, _ *mcp.CallToolRequest, in CleanTextInput) (*mcp.CallToolResult, CleanTextOutput, error) {
	return nil, CleanTextOutput{Content: postprocess.Process(in.Text, in.Audience)}, nil
}
