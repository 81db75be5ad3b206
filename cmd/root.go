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

// File: root.go
// Package: cmd
//
// Description:
// This file contains the entry point and base configuration for the `rcctl` CLI.
// It defines the root command (`rootCmd`) that loads configuration, builds the
// logger and hands control to subcommands like `send` and `shell`.
//
// Features:
// - Serves as the primary entry point for the `rcctl` CLI application.
// - Loads settings from an optional YAML file and RCCTL_* environment variables.
// - Defines global flags for output format, logging and the device endpoint.
//
// Usage:
// - Run the `rcctl` command without any arguments to see the help message:
//   `./rcctl`
// - Send a command to the device:
//   `./rcctl send --host 172.17.2.96 --port 666 FORWARD`
//
// Authors:
// - rcctl Contributors

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/edespino/rcctl/internal/config"
	"github.com/edespino/rcctl/internal/logger"
	"github.com/spf13/cobra"
)

var (
	cfg      *config.Config
	log      = slog.Default()
	closeLog = func() error { return nil }
)

// rootCmd represents the base command when called without any subcommands.
// Its PersistentPreRunE prepares configuration and logging for every
// subcommand.
var rootCmd = &cobra.Command{
	Use:   "rcctl",
	Short: "Remote control client for a TCP command device",
	Long: `The rcctl CLI sends short plaintext commands such as FORWARD or STOP to a
remote device over TCP and prints the device's reply.

Examples:
  - Send one command:
    ./rcctl send --host 127.0.0.1 --port 9000 STOP

  - Drive interactively, one command per line:
    ./rcctl shell --host 127.0.0.1 --port 9000

  - List the conventional command set:
    ./rcctl commands`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Interrupts cancel in-flight round trips through the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// run executes the root command, reports its error once and closes the log
// file whether or not the command succeeded. A failed round trip has already
// been reported by the command itself.
func run(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if cerr := closeLog(); cerr != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error: closing log:", cerr)
	}
	closeLog = func() error { return nil }
	if err != nil && !errors.Is(err, errRoundTrip) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

// setup loads configuration, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cmd, loaded); err != nil {
		return err
	}

	l, closeFn, err := logger.New(logger.Opts{
		Level:  loaded.Log.Level,
		Writer: cmd.ErrOrStderr(),
		File:   loaded.Log.File,
	})
	if err != nil {
		return err
	}

	cfg = loaded
	log = l
	closeLog = closeFn
	log.Debug("configuration loaded", "config", configPath, "host", cfg.Endpoint.Host, "port", cfg.Endpoint.Port)
	if cfg.Client.IgnoredProxy != "" {
		log.Debug("ignoring non-SOCKS ALL_PROXY", "value", cfg.Client.IgnoredProxy)
	}
	return nil
}

// init initializes the root command by defining global flags and configurations.
func init() {
	initSharedFlags()
	rootCmd.Long += "\n\n" + config.Usage()
}
