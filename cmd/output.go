// File: cmd/output.go
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/edespino/rcctl/internal/client"
	"gopkg.in/yaml.v2"
)

// resultView is the yaml/json shape of one completed round trip.
type resultView struct {
	ID        string `json:"id" yaml:"id"`
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	Command   string `json:"command" yaml:"command"`
	Response  string `json:"response" yaml:"response"`
	Bytes     int    `json:"bytes" yaml:"bytes"`
	Truncated bool   `json:"truncated" yaml:"truncated"`
	Elapsed   string `json:"elapsed" yaml:"elapsed"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
}

func newResultView(res client.Result) resultView {
	v := resultView{
		ID:        res.ID.String(),
		Endpoint:  res.Endpoint.Address(),
		Command:   res.Command,
		Response:  res.Response.Text,
		Bytes:     res.Response.Bytes,
		Truncated: res.Response.Truncated,
		Elapsed:   res.Elapsed.Round(time.Millisecond).String(),
	}
	if res.Err != nil {
		v.Error = res.Err.Error()
		v.ErrorKind = string(client.KindOf(res.Err))
	}
	return v
}

// renderResult writes res in the requested format. In text mode failures
// go to errOut and leave out untouched; labelled output prefixes each
// reply with its command, for interleaved shell completions.
func renderResult(out, errOut io.Writer, res client.Result, format string, labelled bool) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(newResultView(res), "", "  ")
		if err != nil {
			return fmt.Errorf("output: failed to generate: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(newResultView(res))
		if err != nil {
			return fmt.Errorf("output: failed to generate: %w", err)
		}
		if labelled {
			fmt.Fprintln(out, "---")
		}
		_, err = fmt.Fprint(out, string(data))
		return err
	}

	if res.Err != nil {
		_, err := fmt.Fprintln(errOut, describeError(res.Err))
		return err
	}
	text := strings.TrimRight(res.Response.Text, "\r\n")
	if labelled {
		_, err := fmt.Fprintf(out, "[%s] %s\n", res.Command, text)
		return err
	}
	_, err := fmt.Fprintln(out, text)
	return err
}

// describeError turns a transport error into the short notice shown to
// the operator.
func describeError(err error) string {
	switch client.KindOf(err) {
	case client.HostUnreachable:
		return fmt.Sprintf("can't find host: %v", err)
	case client.ConnectionError:
		return fmt.Sprintf("having trouble communicating: %v", err)
	}
	return err.Error()
}
