package cleancmder

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/codequest/pkg/postprocess"
)

const cleanLongDesc string = `Clean generated text without running a model.

Reads text from the given files, or from stdin when none are given, and
prints it with incomplete and repeated sentences removed. With
--audience, audience-specific wording substitutions are applied too.
Each file is cleaned on its own and printed on its own line.

Examples:
  codequest clean draft.txt
  cat draft.txt | codequest clean --audience "millennials"`

const cleanShortDesc string = "Clean generated text"

type cleanCommander struct {
	audience string
}

func NewCleanCmd() *cobra.Command {
	cmder := &cleanCommander{}

	cmd := &cobra.Command{
		Use:   "clean [file...]",
		Short: cleanShortDesc,
		Long:  cleanLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args)
		},
	}

	cmd.Flags().StringVarP(&cmder.audience, "audience", "a", "", "Audience used for wording substitutions")

	return cmd
}

func (c *cleanCommander) run(_ context.Context, cmd *cobra.Command, paths []string) error {
	if len(paths) == 0 {
		return c.clean(cmd.OutOrStdout(), cmd.InOrStdin())
	}

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("could not open %s: %w", path, err)
		}

		err = c.clean(cmd.OutOrStdout(), f)
		f.Close()
		if err != nil {
			return fmt.Errorf("could not clean %s: %w", path, err)
		}
	}

	return nil
}

func (c *cleanCommander) clean(w io.Writer, r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, postprocess.Process(string(raw), c.audience))
	return err
}
