package clearcmder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const clearLongDesc string = `Release the model held by a running codequest server.

Calls the server's /clear endpoint, which unloads the model and frees
its memory. The next generation request loads it again. Clearing a
server with no model loaded succeeds.

Examples:
  codequest clear http://localhost:8080
  codequest clear http://gpu-box:8080`

const clearShortDesc string = "Unload the model on a codequest server"

type clearCommander struct {
	timeout time.Duration
}

func NewClearCmd() *cobra.Command {
	cmder := &clearCommander{}

	cmd := &cobra.Command{
		Use:   "clear <server-url>",
		Short: clearShortDesc,
		Long:  clearLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	cmd.Flags().DurationVar(&cmder.timeout, "timeout", time.Minute, "How long to wait for the server")

	return cmd
}

func (c *clearCommander) run(ctx context.Context, cmd *cobra.Command, serverURL string) error {
	serverURL = strings.TrimRight(serverURL, "/")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverURL+"/clear", nil)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Model memory cleared on %s\n", serverURL)
	return nil
}
