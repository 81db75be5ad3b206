// File: cmd/shell.go
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/edespino/rcctl/internal/client"
	"github.com/spf13/cobra"
)

// shellCmd drives the device interactively, one command per input line.
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Read commands from stdin and send each one to the device",
	Long: `Read commands from standard input, one per line, and send each one to the
device as soon as it is entered. Replies are printed as they arrive, which
may differ from the order the commands were typed in.

Blank lines and lines starting with '#' are ignored; 'quit' or 'exit' stops
reading. A failed command is reported and the shell keeps going.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// runShell issues one asynchronous round trip per line. Completions are
// funnelled to a single printer goroutine, the only writer to out/errOut.
func runShell(ctx context.Context, in io.Reader, out, errOut io.Writer) error {
	if err := validateFormat(formatFlag); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ep, err := resolveEndpoint()
	if err != nil {
		return err
	}
	c, err := newClient()
	if err != nil {
		return err
	}

	results := make(chan client.Result)
	printed := make(chan struct{})
	var failed int
	go func() {
		defer close(printed)
		for res := range results {
			if err := renderResult(out, errOut, res, formatFlag, true); err != nil {
				log.Error("failed to render result", "id", res.ID, "error", err)
			}
			if res.Err != nil {
				failed++
				continue
			}
			speakResponse(res.Response.Text)
		}
	}()

	var wg sync.WaitGroup
	var sent int
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		sent++
		log.Debug("sending command", "endpoint", ep.Address(), "command", line)
		done := c.Go(ctx, ep, line)
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- <-done
		}()
	}
	scanErr := scanner.Err()

	wg.Wait()
	close(results)
	<-printed

	log.Info("shell finished", "sent", sent, "failed", failed)
	if scanErr != nil {
		return fmt.Errorf("shell: failed to read input: %w", scanErr)
	}
	return nil
}

func init() {
	initConnectionFlags(shellCmd)
	shellCmd.Flags().BoolVar(&speakFlag, "speak", false, "Read each reply aloud with the speech program")
	rootCmd.AddCommand(shellCmd)
}
