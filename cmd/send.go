// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// File: send.go
// Package: cmd
//
// Description:
// Implements the `send` command: one round trip against the device. The
// arguments are joined with single spaces, so `rcctl send TURN RIGHT` sends
// the string "TURN RIGHT". The reply is printed and, with --speak, read
// aloud.
//
// Exit status is non-zero when the round trip fails. Failures are reported
// as a short notice on stderr in text mode, or inside the document in
// yaml/json mode.

package cmd

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/edespino/rcctl/internal/client"
	"github.com/spf13/cobra"
)

var errRoundTrip = errors.New("round trip failed")

// sendCmd represents the send command.
var sendCmd = &cobra.Command{
	Use:   "send COMMAND...",
	Short: "Send one command to the device and print its reply",
	Long: `Send one plaintext command to the device and print the reply.

Any text is accepted; run 'rcctl commands' for the conventional set.
  rcctl send --host 127.0.0.1 --port 9000 STOP
  rcctl send TURN RIGHT --speak`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeCommands,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSend(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), strings.Join(args, " "))
	},
}

// runSend performs one asynchronous round trip and renders its result.
func runSend(ctx context.Context, out, errOut io.Writer, command string) error {
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

	log.Info("sending command", "endpoint", ep.Address(), "command", command)
	res := <-c.Go(ctx, ep, command)

	if err := renderResult(out, errOut, res, formatFlag, false); err != nil {
		return err
	}
	if res.Err != nil {
		log.Info("command failed", "id", res.ID, "error", res.Err)
		return errRoundTrip
	}
	if !client.IsKnown(command) {
		log.Debug("command outside the conventional vocabulary", "command", command)
	}
	speakResponse(res.Response.Text)
	return nil
}

// completeCommands offers the conventional vocabulary for shell completion.
func completeCommands(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, v := range client.Vocabulary {
		if strings.HasPrefix(v.Command, strings.ToUpper(toComplete)) {
			names = append(names, v.Command+"\t"+v.Description)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	initConnectionFlags(sendCmd)
	sendCmd.Flags().BoolVar(&speakFlag, "speak", false, "Read the reply aloud with the speech program")
	rootCmd.AddCommand(sendCmd)
}
