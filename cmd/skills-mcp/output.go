package main

import (
	"encoding/json"
	"io"

	"github.com/jingkaihe/skills-mcp/pkg/presenter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to write JSON output")
	}
	return nil
}

// configurePresenter applies --color and --quiet to the global presenter.
// Without --color the SKILLS_MCP_COLOR and NO_COLOR environment decides.
func configurePresenter(cmd *cobra.Command) error {
	mode := presenter.DetectColorMode()
	if cmd.Flags().Changed("color") {
		value, _ := cmd.Flags().GetString("color")
		parsed, err := presenter.ParseColorMode(value)
		if err != nil {
			return err
		}
		mode = parsed
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	presenter.Configure(mode, quiet)
	return nil
}
