// Package prompt builds the article instruction sent to the model and
// removes it again from the model's echoed output.
package prompt

import (
	"fmt"
	"strings"
)

const articleTemplate = "Write a %s 400-word article about %s for %s. " +
	"Start with an introduction, followed by key points, and end with a conclusion."

// Request describes the article to write.
type Request struct {
	Topic    string `json:"topic" form:"topic"`
	Audience string `json:"audience" form:"audience"`
	Tone     string `json:"tone" form:"tone"`
}

// MissingFieldError is returned by Validate when a required field is empty.
type MissingFieldError struct {
	Field string
}

func (e MissingFieldError) Error() string {
	return "missing required field: " + e.Field
}

// Validate reports the first empty field, checked as topic, audience, tone.
func Validate(req Request) error {
	fields := []struct {
		name  string
		value string
	}{
		{"topic", req.Topic},
		{"audience", req.Audience},
		{"tone", req.Tone},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return MissingFieldError{Field: f.name}
		}
	}
	return nil
}

// Build interpolates the request into the article instruction. Fields are
// inserted verbatim.
func Build(req Request) string {
	return fmt.Sprintf(articleTemplate, req.Tone, req.Topic, req.Audience)
}

// StripEcho drops as many characters from the front of text as prompt has.
// Models return the prompt followed by the continuation; only the
// continuation is wanted.
func StripEcho(text, prompt string) string {
	n := len([]rune(prompt))
	for i := range text {
		if n == 0 {
			return text[i:]
		}
		n--
	}
	return ""
}
