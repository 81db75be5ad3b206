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

// File: send_test.go
// Package: cmd
//
// Description:
// Tests for the `send` command and the shared plumbing it relies on: flag
// overrides, endpoint resolution, result rendering and the speech sink.
// A loopback listener stands in for the device.
//
// Test Categories:
// 1. Round trips:
//    - Reply printed in text, json and yaml
//    - Unreachable host and refused connection notices
// 2. Speech:
//    - Speech program invoked with the configured voice
//    - Speech failures do not fail the command
// 3. Root command:
//    - Flags parsed and configuration loaded end to end
//
// Usage:
// - Run all tests:
//   go test -v ./cmd/
//
// Authors:
// - rcctl Contributors

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/edespino/rcctl/internal/client"
	"github.com/edespino/rcctl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput captures the output of a function to help validate printed output in tests.
func captureOutput(f func()) string {
	r, w, _ := os.Pipe()
	stdOut := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdOut }()

	f()
	w.Close()
	out, _ := io.ReadAll(r)
	return string(out)
}

// MockCommander records the commands it is asked to run.
type MockCommander struct {
	Output []byte
	Err    error
	cmds   []string
}

func (m *MockCommander) Execute(name string, args ...string) ([]byte, error) {
	m.cmds = append(m.cmds, name+" "+strings.Join(args, " "))
	return m.Output, m.Err
}

func (m *MockCommander) GetCommands() []string {
	return m.cmds
}

// useTestConfig installs a known configuration and resets shared flags.
func useTestConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.Endpoint.Host = "127.0.0.1"
	c.Endpoint.Port = 666
	c.Client.Timeout = 5 * time.Second
	c.Client.BufferSize = client.DefaultBufferSize
	c.Client.ReadMode = "once"
	c.Log.Level = "warn"
	c.Speech.Command = "espeak"
	c.Speech.Voice = "en-us"
	c.Speech.Rate = 122
	c.Speech.Pitch = 15

	origCfg, origFormat := cfg, formatFlag
	origHost, origPort, origSpeak := hostFlag, portFlag, speakFlag
	t.Cleanup(func() {
		cfg, formatFlag = origCfg, origFormat
		hostFlag, portFlag, speakFlag = origHost, origPort, origSpeak
	})

	cfg = c
	formatFlag = "text"
	hostFlag, portFlag = "", ""
	speakFlag = false
	return c
}

// startDevice runs a loopback peer that answers every command with
// reply(command) and points the shared host/port flags at it.
func startDevice(t *testing.T, reply func(command string) string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				buf := make([]byte, 256)
				n, _ := conn.Read(buf)
				io.WriteString(conn, reply(string(buf[:n])))
			}()
		}
	}()

	hostFlag = "127.0.0.1"
	portFlag = strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
}

// pointAtClosedPort aims the shared flags at a port nobody listens on.
func pointAtClosedPort(t *testing.T) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	hostFlag = "127.0.0.1"
	portFlag = strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
	require.NoError(t, ln.Close())
}

func TestRunSendPrintsReply(t *testing.T) {
	useTestConfig(t)
	startDevice(t, func(cmd string) string { return cmd + "PED\n" })

	var out, errOut bytes.Buffer
	err := runSend(context.Background(), &out, &errOut, "STOP")
	require.NoError(t, err)
	assert.Equal(t, "STOPPED\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestRunSendJSON(t *testing.T) {
	useTestConfig(t)
	formatFlag = "json"
	startDevice(t, func(cmd string) string { return "ACK " + cmd })

	var out, errOut bytes.Buffer
	require.NoError(t, runSend(context.Background(), &out, &errOut, "TURN RIGHT"))

	var view resultView
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.Equal(t, "TURN RIGHT", view.Command)
	assert.Equal(t, "ACK TURN RIGHT", view.Response)
	assert.Equal(t, 14, view.Bytes)
	assert.Empty(t, view.Error)
	assert.NotEmpty(t, view.ID)
}

func TestRunSendYAML(t *testing.T) {
	useTestConfig(t)
	formatFlag = "yaml"
	startDevice(t, func(string) string { return "MOVING" })

	var out, errOut bytes.Buffer
	require.NoError(t, runSend(context.Background(), &out, &errOut, "FORWARD"))
	assert.Contains(t, out.String(), "command: FORWARD")
	assert.Contains(t, out.String(), "response: MOVING")
}

func TestRunSendUnreachableHost(t *testing.T) {
	useTestConfig(t)
	hostFlag, portFlag = "256.256.256.256", "9000"

	var out, errOut bytes.Buffer
	err := runSend(context.Background(), &out, &errOut, "KILL")
	assert.True(t, errors.Is(err, errRoundTrip))
	assert.Empty(t, out.String(), "displayed response must not change on failure")
	assert.Contains(t, errOut.String(), "can't find host")
}

func TestRunSendConnectionRefused(t *testing.T) {
	useTestConfig(t)
	pointAtClosedPort(t)

	var out, errOut bytes.Buffer
	err := runSend(context.Background(), &out, &errOut, "KILL")
	assert.ErrorIs(t, err, errRoundTrip)
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "having trouble communicating")
}

func TestRunSendErrorInJSON(t *testing.T) {
	useTestConfig(t)
	formatFlag = "json"
	pointAtClosedPort(t)

	var out, errOut bytes.Buffer
	err := runSend(context.Background(), &out, &errOut, "KILL")
	assert.ErrorIs(t, err, errRoundTrip)

	var view resultView
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.Equal(t, string(client.ConnectionError), view.ErrorKind)
	assert.NotEmpty(t, view.Error)
}

func TestRunSendInvalidFormat(t *testing.T) {
	useTestConfig(t)
	formatFlag = "xml"

	err := runSend(context.Background(), io.Discard, io.Discard, "STOP")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRunSendInvalidPort(t *testing.T) {
	useTestConfig(t)
	hostFlag, portFlag = "127.0.0.1", "http"

	err := runSend(context.Background(), io.Discard, io.Discard, "STOP")
	assert.ErrorIs(t, err, client.ErrInvalidEndpoint)
}

func TestRunSendSpeaksReply(t *testing.T) {
	useTestConfig(t)
	speakFlag = true
	startDevice(t, func(string) string { return "STOPPED" })

	mock := &MockCommander{}
	oldCmdExecutor := cmdExecutor
	SetCommander(mock)
	defer SetCommander(oldCmdExecutor)

	require.NoError(t, runSend(context.Background(), io.Discard, io.Discard, "STOP"))
	assert.Equal(t, []string{"espeak -v en-us -s 122 -p 15 STOPPED"}, mock.GetCommands())
}

func TestRunSendSpeechFailureIsNotFatal(t *testing.T) {
	useTestConfig(t)
	speakFlag = true
	startDevice(t, func(string) string { return "STOPPED" })

	mock := &MockCommander{Output: []byte("no audio device"), Err: errors.New("exit status 1")}
	oldCmdExecutor := cmdExecutor
	SetCommander(mock)
	defer SetCommander(oldCmdExecutor)

	var out bytes.Buffer
	require.NoError(t, runSend(context.Background(), &out, io.Discard, "STOP"))
	assert.Equal(t, "STOPPED\n", out.String())
	assert.Len(t, mock.GetCommands(), 1)
}

func TestSpeakSkipsEmptyText(t *testing.T) {
	useTestConfig(t)
	mock := &MockCommander{}
	oldCmdExecutor := cmdExecutor
	SetCommander(mock)
	defer SetCommander(oldCmdExecutor)

	require.NoError(t, speak("  \n"))
	assert.Empty(t, mock.GetCommands())

	mock.Err = errors.New("exit status 1")
	mock.Output = []byte("espeak: not found")
	err := speak("hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "speech: espeak failed")
	assert.Contains(t, err.Error(), "espeak: not found")
}

func TestResolveEndpointFallsBackToConfig(t *testing.T) {
	c := useTestConfig(t)
	c.Endpoint.Host = "10.0.0.9"
	c.Endpoint.Port = 7000

	ep, err := resolveEndpoint()
	require.NoError(t, err)
	assert.Equal(t, client.Endpoint{Host: "10.0.0.9", Port: 7000}, ep)

	portFlag = "9000"
	ep, err = resolveEndpoint()
	require.NoError(t, err)
	assert.Equal(t, client.Endpoint{Host: "10.0.0.9", Port: 9000}, ep)
}

func TestDescribeError(t *testing.T) {
	hostErr := &client.TransportError{Kind: client.HostUnreachable, Op: client.OpDial}
	connErr := &client.TransportError{Kind: client.ConnectionError, Op: client.OpRead}

	assert.True(t, strings.HasPrefix(describeError(hostErr), "can't find host"))
	assert.True(t, strings.HasPrefix(describeError(connErr), "having trouble communicating"))
	assert.Equal(t, "boom", describeError(errors.New("boom")))
}

func TestApplyFlagOverrides(t *testing.T) {
	c := useTestConfig(t)
	flags := sendCmd.Flags()
	require.NoError(t, flags.Set("read-mode", "eof"))
	require.NoError(t, flags.Set("timeout", "2s"))
	t.Cleanup(func() {
		flags.Set("read-mode", "once")
		flags.Set("timeout", "0s")
		flags.Lookup("read-mode").Changed = false
		flags.Lookup("timeout").Changed = false
	})

	require.NoError(t, applyFlagOverrides(sendCmd, c))
	assert.Equal(t, "eof", c.Client.ReadMode)
	assert.Equal(t, 2*time.Second, c.Client.Timeout)
	assert.Equal(t, client.DefaultBufferSize, c.Client.BufferSize, "unchanged flags keep config values")
}

// TestRootCommandSend runs `rcctl send` end to end through cobra.
func TestRootCommandSend(t *testing.T) {
	useTestConfig(t)
	for _, k := range []string{"RCCTL_HOST", "RCCTL_PORT", "RCCTL_READ_MODE", "RCCTL_PROXY", "ALL_PROXY", "all_proxy"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	startDevice(t, func(cmd string) string { return cmd + " DONE" })
	host, port := hostFlag, portFlag

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"send", "--host", host, "--port", port, "TURN", "LEFT"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "TURN LEFT DONE\n", out.String())
}

// runRoot runs the root command through run with args and captured streams.
func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()
	err := run(context.Background())
	return out.String(), errOut.String(), err
}

// clearConnectionEnv keeps the host environment out of root command tests.
func clearConnectionEnv(t *testing.T) {
	for _, k := range []string{"RCCTL_HOST", "RCCTL_PORT", "RCCTL_READ_MODE", "RCCTL_PROXY", "RCCTL_LOG_FILE", "RCCTL_LOG_LEVEL", "ALL_PROXY", "all_proxy"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

// TestRootCommandSendIgnoresHTTPAllProxy checks that an HTTP proxy meant for
// other tools does not stop commands from reaching the device.
func TestRootCommandSendIgnoresHTTPAllProxy(t *testing.T) {
	useTestConfig(t)
	clearConnectionEnv(t)
	t.Setenv("ALL_PROXY", "http://proxy.corp:3128")
	startDevice(t, func(cmd string) string { return cmd + "PED" })

	out, errOut, err := runRoot(t, "send", "--host", hostFlag, "--port", portFlag, "STOP")
	require.NoError(t, err)
	assert.Equal(t, "STOPPED\n", out)
	assert.NotContains(t, errOut, "proxy")
	assert.Empty(t, cfg.Client.Proxy)
}

// TestRootCommandRejectsHTTPProxyFlag checks explicit proxies are still validated.
func TestRootCommandRejectsHTTPProxyFlag(t *testing.T) {
	useTestConfig(t)
	clearConnectionEnv(t)
	startDevice(t, func(cmd string) string { return cmd })
	proxy := sendCmd.Flags().Lookup("proxy")
	t.Cleanup(func() {
		proxyFlag = ""
		proxy.Value.Set("")
		proxy.Changed = false
	})

	_, errOut, err := runRoot(t, "send", "--host", hostFlag, "--port", portFlag, "--proxy", "http://proxy.corp:3128", "STOP")
	require.Error(t, err)
	assert.Contains(t, errOut, "Error: proxy: unsupported address")
}

// TestRootCommandReportsFailureOnce expects only the communication notice
// when a round trip fails.
func TestRootCommandReportsFailureOnce(t *testing.T) {
	useTestConfig(t)
	clearConnectionEnv(t)
	pointAtClosedPort(t)

	out, errOut, err := runRoot(t, "send", "--host", hostFlag, "--port", portFlag, "KILL")
	assert.ErrorIs(t, err, errRoundTrip)
	assert.Empty(t, out)
	assert.Equal(t, 1, strings.Count(errOut, "having trouble communicating"))
	assert.NotContains(t, errOut, "round trip failed")
}

// TestRootCommandClosesLogFileOnFailure checks the JSON log file is written
// and released even when the command fails.
func TestRootCommandClosesLogFileOnFailure(t *testing.T) {
	useTestConfig(t)
	clearConnectionEnv(t)
	pointAtClosedPort(t)
	logPath := filepath.Join(t.TempDir(), "rcctl.log")
	pf := rootCmd.PersistentFlags()
	t.Cleanup(func() {
		logFileFlag, logLevelFlag = "", ""
		for _, name := range []string{"log-file", "log-level"} {
			pf.Lookup(name).Value.Set("")
			pf.Lookup(name).Changed = false
		}
		log = slog.Default()
	})

	_, _, err := runRoot(t, "send", "--log-level", "debug", "--log-file", logPath,
		"--host", hostFlag, "--port", portFlag, "KILL")
	assert.ErrorIs(t, err, errRoundTrip)

	data, rerr := os.ReadFile(logPath)
	require.NoError(t, rerr)
	assert.Contains(t, string(data), `"msg":"command failed"`)

	fds, derr := os.ReadDir("/proc/self/fd")
	if derr != nil {
		t.Skip("open file descriptors not listable on this platform")
	}
	for _, fd := range fds {
		target, _ := os.Readlink(filepath.Join("/proc/self/fd", fd.Name()))
		assert.NotEqual(t, logPath, target, "log file left open")
	}
}

func TestRootHelpListsEnvironment(t *testing.T) {
	assert.Contains(t, rootCmd.Long, "RCCTL_HOST")
}
