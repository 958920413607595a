package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cleancmder "github.com/papercomputeco/codequest/cmd/codequest/clean"
	clearcmder "github.com/papercomputeco/codequest/cmd/codequest/clear"
	generatecmder "github.com/papercomputeco/codequest/cmd/codequest/generate"
	mcpcmder "github.com/papercomputeco/codequest/cmd/codequest/mcp"
	servecmder "github.com/papercomputeco/codequest/cmd/codequest/serve"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const rootLongDesc string = `codequest writes short articles with a local language model.

It builds a prompt from a topic, an audience and a tone, generates text
on an Ollama-compatible runtime, then keeps only complete, unique
sentences and adjusts wording for millennial or professional readers.

Run "codequest serve" for the web generator, "codequest generate" for a
one-off article in the terminal, or "codequest mcp" to offer the same
tools to an MCP client.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "codequest",
		Short:         "Generate audience-tailored articles with a local model",
		Long:          rootLongDesc,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		servecmder.NewServeCmd(),
		generatecmder.NewGenerateCmd(),
		cleancmder.NewCleanCmd(),
		clearcmder.NewClearCmd(),
		mcpcmder.NewMCPCmd(version),
	)

	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
