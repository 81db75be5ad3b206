// File: cmd/commands.go
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/edespino/rcctl/internal/client"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

type vocabularyView struct {
	Command     string `json:"command" yaml:"command"`
	Description string `json:"description" yaml:"description"`
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the conventional device commands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommands(cmd.OutOrStdout())
	},
}

func runCommands(out io.Writer) error {
	if err := validateFormat(formatFlag); err != nil {
		return err
	}

	views := make([]vocabularyView, 0, len(client.Vocabulary))
	for _, v := range client.Vocabulary {
		views = append(views, vocabularyView{Command: v.Command, Description: v.Description})
	}

	var output []byte
	var err error
	switch formatFlag {
	case "json":
		output, err = json.MarshalIndent(views, "", "  ")
	case "yaml":
		output, err = yaml.Marshal(views)
	default:
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Command", "Description"})
		table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		table.SetCenterSeparator("|")
		table.SetAutoWrapText(false)
		for _, v := range views {
			table.Append([]string{v.Command, v.Description})
		}
		table.Render()
		return nil
	}
	if err != nil {
		return fmt.Errorf("output: failed to generate: %w", err)
	}

	fmt.Fprintln(out, string(output))
	return nil
}

func init() {
	rootCmd.AddCommand(commandsCmd)
}
