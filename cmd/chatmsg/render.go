package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lojasmm/chatmsg/internal/recipe"
)

var renderCmd = &cobra.Command{
	Use:   "render <recipe-file>",
	Short: "Build the message described by a JSON or YAML recipe and print it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		indent, _ := cmd.Flags().GetBool("indent")
		return render(cmd, args[0], indent)
	},
}

func init() {
	renderCmd.Flags().Bool("indent", false, "indent the JSON output")
}

func render(cmd *cobra.Command, path string, indent bool) error {
	r, err := recipe.Load(path)
	if err != nil {
		return err
	}
	m, err := r.Build()
	if err != nil {
		if kind := recipe.Kind(err); kind != "" {
			return fmt.Errorf("%s: %s: %w", path, kind, err)
		}
		return fmt.Errorf("%s: %w", path, err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(m.Snapshot())
}
