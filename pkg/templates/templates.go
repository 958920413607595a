// Package templates renders the HTML pages of the web front-end.
//
// Pages are built in. A directory of *.html files can override any of them;
// the directory is watched and re-parsed on change, keeping the last good
// set when a re-parse fails.
package templates

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/papercomputeco/codequest/pkg/prompt"
)

// Page names.
const (
	Index  = "index.html"
	Result = "result.html"
	Error  = "error.html"
)

//go:embed html/*.html
var builtin embed.FS

// IndexPage is the data for Index.
type IndexPage struct {
	Request prompt.Request
	Error   string
}

// ResultPage is the data for Result.
type ResultPage struct {
	Content string
}

// ErrorPage is the data for Error.
type ErrorPage struct {
	Error string
}

// Renderer executes page templates. It is safe for concurrent use.
type Renderer struct {
	dir    string
	logger *zap.Logger

	mu   sync.RWMutex
	tmpl *template.Template
}

// New parses the built-in pages and, if dir is not empty, the overrides in
// dir.
func New(dir string, logger *zap.Logger) (*Renderer, error) {
	r := &Renderer{
		dir:    dir,
		logger: logger,
	}

	tmpl, err := r.parse()
	if err != nil {
		return nil, err
	}
	r.tmpl = tmpl

	return r, nil
}

func (r *Renderer) parse() (*template.Template, error) {
	tmpl, err := template.ParseFS(builtin, "html/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse built-in templates: %w", err)
	}

	if r.dir == "" {
		return tmpl, nil
	}

	tmpl, err = tmpl.ParseFS(os.DirFS(r.dir), "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates in %s: %w", r.dir, err)
	}
	return tmpl, nil
}

// Render executes the named page into w.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	r.mu.RLock()
	tmpl := r.tmpl
	r.mu.RUnlock()

	return tmpl.ExecuteTemplate(w, name, data)
}

// Watch re-parses the override directory whenever an *.html file in it
// changes, until ctx is done. Without an override directory it returns at
// once.
func (r *Renderer) Watch(ctx context.Context) error {
	if r.dir == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(r.dir); err != nil {
		return fmt.Errorf("watch %s: %w", r.dir, err)
	}

	r.logger.Info("watching templates", zap.String("dir", r.dir))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".html" || event.Op == fsnotify.Chmod {
				continue
			}
			r.reload(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("template watcher error", zap.Error(err))
		}
	}
}

func (r *Renderer) reload(changed string) {
	tmpl, err := r.parse()
	if err != nil {
		r.logger.Warn("keeping previous templates",
			zap.String("changed", changed),
			zap.Error(err),
		)
		return
	}

	r.mu.Lock()
	r.tmpl = tmpl
	r.mu.Unlock()

	r.logger.Info("templates reloaded", zap.String("changed", changed))
}
