// Description:
// This file implements the `probe` command, which checks whether the
// configured device can be reached without sending it a command.
//
// Features:
// - Concurrent collection of the individual checks.
// - Flexible output formats: YAML and JSON (text prints YAML).
// - Endpoint checks:
//   * Name resolution of the device host
//   * TCP connect to host:port, through the proxy when one is configured
// - Local context:
//   * Hostname of this machine
//   * Proxy, read mode and buffer size in effect
//
// Usage:
// - Example: `rcctl probe --host 172.17.2.96 --port 666 --format=json`
//
// Note:
// - The connection is closed right after it is established; nothing is
//   written, so the device never sees a command.
// - A summary of errors is printed before the output and the command fails
//   if any check failed.
//

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/edespino/rcctl/internal/client"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// defaultProbeTimeout bounds each check when no --timeout is configured.
const defaultProbeTimeout = 5 * time.Second

// ProbeInfo contains the results collected by the probe command.
type ProbeInfo struct {
	// Endpoint is the host:port that was probed.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Addresses are the IP addresses the host resolved to.
	// Omitted when resolution failed.
	Addresses []string `json:"addresses,omitempty" yaml:"addresses,omitempty"`

	// Reachable reports whether a TCP connection could be opened.
	Reachable bool `json:"reachable" yaml:"reachable"`

	// ConnectTime is how long the TCP connect took.
	ConnectTime string `json:"connect_time,omitempty" yaml:"connect_time,omitempty"`

	// LocalHostname is this machine's network name.
	LocalHostname string `json:"local_hostname" yaml:"local_hostname"`

	// Proxy is the SOCKS proxy used to reach the device, if any.
	Proxy string `json:"proxy,omitempty" yaml:"proxy,omitempty"`

	ReadMode   string `json:"read_mode" yaml:"read_mode"`
	BufferSize int    `json:"buffer_size" yaml:"buffer_size"`
}

// probeCmd represents the probe command.
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check that the device endpoint resolves and accepts connections",
	Long:  `Resolve the device host and open (then immediately close) a TCP connection to it.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunProbe(cmd, args)
	},
}

// getAddresses resolves host to its IP addresses.
func getAddresses(ctx context.Context, host string) ([]string, error) {
	addrs, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("resolve: failed to look up %s: %w", host, err)
	}
	return addrs, nil
}

// checkConnect opens and closes a TCP connection to ep through dialer.
// Returns the connect duration.
func checkConnect(ctx context.Context, dialer client.Dialer, ep client.Endpoint) (time.Duration, error) {
	start := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", ep.Address())
	if err != nil {
		return 0, fmt.Errorf("connect: failed to reach %s: %w", ep.Address(), err)
	}
	elapsed := time.Since(start)
	conn.Close()
	return elapsed, nil
}

// getHostname returns the system's network hostname.
func getHostname() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("hostname: failed to retrieve hostname: %w", err)
	}
	return hostname, nil
}

// RunProbe gathers and displays endpoint reachability information.
// Checks run concurrently; each is bounded by the configured timeout, or
// defaultProbeTimeout when none is set.
//
// The output format is determined by the global formatFlag. Any errors
// encountered are displayed in a summary before the output, and an error
// is returned so the exit status reflects the failure.
func RunProbe(cmd *cobra.Command, args []string) error {
	if err := validateFormat(formatFlag); err != nil {
		return err
	}
	ep, err := resolveEndpoint()
	if err != nil {
		return err
	}
	dialer, err := client.NewDialer(cfg.Client.Proxy)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}
	timeout := cfg.Client.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex

	info := ProbeInfo{
		Endpoint:   ep.Address(),
		Proxy:      cfg.Client.Proxy,
		ReadMode:   cfg.Client.ReadMode,
		BufferSize: cfg.Client.BufferSize,
	}
	errs := make([]error, 0)

	// Concurrent data collection
	wg.Add(3)
	go func() {
		defer wg.Done()
		// Behind a proxy the proxy resolves the name; local lookup may fail legitimately.
		if info.Proxy != "" {
			return
		}
		addrs, err := getAddresses(ctx, ep.Host)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, err)
			return
		}
		info.Addresses = addrs
	}()
	go func() {
		defer wg.Done()
		elapsed, err := checkConnect(ctx, dialer, ep)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, err)
			return
		}
		info.Reachable = true
		info.ConnectTime = elapsed.Round(time.Microsecond).String()
	}()
	go func() {
		defer wg.Done()
		hostname, err := getHostname()
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, err)
			return
		}
		info.LocalHostname = hostname
	}()

	wg.Wait()

	if len(errs) > 0 {
		fmt.Println("\nSummary of errors:")
		for _, err := range errs {
			fmt.Println("-", err)
		}
	}

	var output []byte
	if formatFlag == "json" {
		output, err = json.MarshalIndent(info, "", "  ")
	} else {
		output, err = yaml.Marshal(info)
	}
	if err != nil {
		return fmt.Errorf("output: failed to generate: %w", err)
	}

	fmt.Println(string(output))

	if len(errs) > 0 {
		return fmt.Errorf("errors occurred during probe of %s", ep.Address())
	}
	return nil
}

// init registers the probe command and its connection flags.
func init() {
	initConnectionFlags(probeCmd)
	rootCmd.AddCommand(probeCmd)
}
