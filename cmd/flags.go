// File: cmd/flags.go
package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/edespino/rcctl/internal/client"
	"github.com/edespino/rcctl/internal/config"
	"github.com/spf13/cobra"
)

// Shared command flags
var (
	formatFlag string // Common flag for output format (text/yaml/json)
	configPath string

	logLevelFlag string
	logFileFlag  string

	hostFlag       string
	portFlag       string
	timeoutFlag    time.Duration
	bufferSizeFlag int
	readModeFlag   string
	proxyFlag      string
)

// validateFormat checks if the provided format is "text", "json" or "yaml"
func validateFormat(format string) error {
	if format != "text" && format != "json" && format != "yaml" {
		return fmt.Errorf("invalid format: %s. Valid options are 'text', 'json' or 'yaml'", format)
	}
	return nil
}

// initSharedFlags initializes flags that are shared across multiple commands
func initSharedFlags() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&formatFlag, "format", "text", "Output format: text, yaml or json")
	pf.StringVar(&configPath, "config", "", "YAML config file (environment variables still apply)")
	pf.StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&logFileFlag, "log-file", "", "Also write JSON logs to this file")
}

// initConnectionFlags adds the endpoint and transport flags to cmd.
func initConnectionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&hostFlag, "host", "", "Device host (default from RCCTL_HOST)")
	f.StringVar(&portFlag, "port", "", "Device port (default from RCCTL_PORT)")
	f.DurationVar(&timeoutFlag, "timeout", 0, "Bound on a whole round trip, 0 waits forever")
	f.IntVar(&bufferSizeFlag, "buffer-size", client.DefaultBufferSize, "Reply buffer capacity in bytes")
	f.StringVar(&readModeFlag, "read-mode", string(client.ReadOnce), "Reply framing: once (single read) or eof (until peer closes)")
	f.StringVar(&proxyFlag, "proxy", "", "SOCKS proxy URL, e.g. socks5://127.0.0.1:1080")
}

// applyFlagOverrides copies explicitly set flags over loaded configuration.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.Log.Level = logLevelFlag
	}
	if flags.Changed("log-file") {
		c.Log.File = logFileFlag
	}
	if flags.Changed("timeout") {
		c.Client.Timeout = timeoutFlag
	}
	if flags.Changed("buffer-size") {
		c.Client.BufferSize = bufferSizeFlag
	}
	if flags.Changed("read-mode") {
		c.Client.ReadMode = readModeFlag
	}
	if flags.Changed("proxy") {
		c.Client.Proxy = proxyFlag
	}
	return c.Validate()
}

// resolveEndpoint fills blank --host/--port values from configuration.
func resolveEndpoint() (client.Endpoint, error) {
	host := hostFlag
	if host == "" {
		host = cfg.Endpoint.Host
	}
	port := portFlag
	if port == "" {
		port = strconv.Itoa(cfg.Endpoint.Port)
	}
	return client.ParseEndpoint(host, port, client.DefaultEndpoint)
}

// newClient builds a command client from the active configuration.
func newClient() (*client.Client, error) {
	mode, err := client.ParseReadMode(cfg.Client.ReadMode)
	if err != nil {
		return nil, err
	}
	dialer, err := client.NewDialer(cfg.Client.Proxy)
	if err != nil {
		return nil, err
	}
	return client.New(
		client.WithDialer(dialer),
		client.WithBufferSize(cfg.Client.BufferSize),
		client.WithReadMode(mode),
		client.WithTimeout(cfg.Client.Timeout),
		client.WithLogger(log),
	), nil
}
