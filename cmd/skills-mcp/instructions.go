package main

import (
	"fmt"

	"github.com/jingkaihe/skills-mcp/pkg/instructions"
	"github.com/spf13/cobra"
)

type InstructionsConfig struct {
	NoXML bool
}

func NewInstructionsConfig() *InstructionsConfig {
	return &InstructionsConfig{
		NoXML: false,
	}
}

var instructionsCmd = &cobra.Command{
	Use:   "instructions",
	Short: "Print the skills usage guide for agent configuration files",
	Long: `Export the Skills MCP agent instructions for use in agent configuration files,
custom instructions, or project documentation.

By default the instructions are wrapped in <skills-mcp-instructions> XML tags to
provide clear boundaries when appending to existing files. Use this when you want
skills guidance always present in context rather than loading it on demand with
the init-skills prompt.`,
	Example: `  # Append to AGENTS.md
  skills-mcp instructions >> AGENTS.md

  # Export without XML tags
  skills-mcp instructions --no-xml > custom-format.md`,
	Run: func(cmd *cobra.Command, _ []string) {
		config := getInstructionsConfigFromFlags(cmd)
		fmt.Fprintln(cmd.OutOrStdout(), instructions.Guide(!config.NoXML))
	},
}

func init() {
	defaults := NewInstructionsConfig()
	instructionsCmd.Flags().Bool("no-xml", defaults.NoXML, "Disable the XML tag wrapper")
}

func getInstructionsConfigFromFlags(cmd *cobra.Command) *InstructionsConfig {
	config := NewInstructionsConfig()

	if noXML, err := cmd.Flags().GetBool("no-xml"); err == nil {
		config.NoXML = noXML
	}

	return config
}
