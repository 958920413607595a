package generatecmder

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/papercomputeco/codequest/cmd/codequest/cliconfig"
	"github.com/papercomputeco/codequest/pkg/article"
	"github.com/papercomputeco/codequest/pkg/logger"
	"github.com/papercomputeco/codequest/pkg/prompt"
)

const generateLongDesc string = `Generate one article in the terminal.

Builds the article prompt from --topic, --audience and --tone, runs it
against the configured model and prints the cleaned result. On a
terminal the article is rendered as styled markdown; with --plain, or
when output is redirected, it is printed as wrapped plain text.

Examples:
  codequest generate --topic "home automation" --audience "millennials" --tone playful
  codequest generate -t rust -a "working professionals" --tone formal --plain > article.txt`

const generateShortDesc string = "Generate an article from the command line"

const defaultWidth = 80

var (
	accentColor = lipgloss.Color("205")
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

type generateCommander struct {
	flags    cliconfig.Flags
	request  prompt.Request
	plain    bool
	width    int
	unload   bool
}

func NewGenerateCmd() *cobra.Command {
	cmder := &generateCommander{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: generateShortDesc,
		Long:  generateLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmder.flags.Register(cmd)
	cmd.Flags().StringVarP(&cmder.request.Topic, "topic", "t", "", "Article topic")
	cmd.Flags().StringVarP(&cmder.request.Audience, "audience", "a", "", "Target audience")
	cmd.Flags().StringVar(&cmder.request.Tone, "tone", "", "Writing tone")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print plain text without styling")
	cmd.Flags().IntVarP(&cmder.width, "width", "w", 0, "Wrap width (defaults to the terminal width)")
	cmd.Flags().BoolVar(&cmder.unload, "unload", false, "Unload the model after generating")

	return cmd
}

func (c *generateCommander) run(ctx context.Context, cmd *cobra.Command) error {
	if err := prompt.Validate(c.request); err != nil {
		return err
	}

	cfg, err := c.flags.Load(cmd)
	if err != nil {
		return err
	}

	log := zap.NewNop()
	if cfg.Debug {
		log = logger.NewLoggerTo(cmd.ErrOrStderr(), true)
	}
	defer func() { _ = log.Sync() }()

	articles, err := cliconfig.NewService(cfg, log)
	if err != nil {
		return err
	}
	if c.unload {
		defer func() {
			if err := articles.Clear(context.Background()); err != nil {
				log.Warn("failed to unload model", zap.Error(err))
			}
		}()
	}

	out := cmd.OutOrStdout()
	fd, tty := terminalFD(out)
	width := c.wrapWidth(fd, tty)

	generate := func(ctx context.Context) (*article.Result, error) {
		return articles.Generate(ctx, c.request)
	}

	if c.plain || !tty {
		result, err := generate(ctx)
		if err != nil {
			return err
		}
		return writePlain(out, result, width)
	}

	result, err := runWithSpinner(ctx, out, fmt.Sprintf("Writing about %s...", c.request.Topic), generate)
	if err != nil {
		return err
	}
	return writeStyled(out, c.request, result, width)
}

func (c *generateCommander) wrapWidth(fd int, tty bool) int {
	if c.width > 0 {
		return c.width
	}
	if tty {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	return defaultWidth
}

func terminalFD(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

func writePlain(w io.Writer, result *article.Result, width int) error {
	if result.Content == "" {
		_, err := fmt.Fprintln(w, "The model did not produce a complete sentence.")
		return err
	}

	_, err := fmt.Fprintln(w, ansi.Wordwrap(result.Content, width, ""))
	return err
}

func writeStyled(w io.Writer, req prompt.Request, result *article.Result, width int) error {
	fmt.Fprintln(w, headerStyle.Render(req.Topic))
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%s, for %s (%s audience)", req.Tone, req.Audience, result.Audience)))

	if result.Content == "" {
		fmt.Fprintln(w)
		_, err := fmt.Fprintln(w, mutedStyle.Render("The model did not produce a complete sentence."))
		return err
	}

	style := "light"
	if termenv.HasDarkBackground() {
		style = "dark"
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("could not create renderer: %w", err)
	}

	rendered, err := renderer.Render(result.Content)
	if err != nil {
		return fmt.Errorf("could not render article: %w", err)
	}

	_, err = fmt.Fprint(w, strings.TrimRight(rendered, "\n")+"\n")
	return err
}
