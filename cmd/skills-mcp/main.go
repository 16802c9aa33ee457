package main

import (
	"context"
	"os"
	"strings"

	"github.com/jingkaihe/skills-mcp/pkg/logger"
	"github.com/jingkaihe/skills-mcp/pkg/presenter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("SKILLS_MCP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skills-mcp")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

var rootCmd = &cobra.Command{
	Use:   "skills-mcp",
	Short: "Serve agent skills over the Model Context Protocol",
	Long: `skills-mcp discovers skills (directories containing a SKILL.md with name and
description front-matter) under one or more directories and serves them to agents
over MCP with two tools: list_skills for discovery and get_skill for loading a
skill's instructions on demand.

Running skills-mcp without a subcommand starts the server.`,
	Example: `  skills-mcp --skills-dir /path/to/skills
  skills-mcp -s /path/to/skills -s /path/to/more-skills
  skills-mcp serve -s /path/to/skills --transport http`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := configurePresenter(cmd); err != nil {
			return err
		}
		return logger.Configure(viper.GetString("log_level"), viper.GetString("log_format"))
	},
	Run: func(cmd *cobra.Command, args []string) {
		serveCmd.Run(cmd, args)
	},
}

func init() {
	defaults := NewServeConfig()

	rootCmd.PersistentFlags().StringArrayP("skills-dir", "s", nil, "Absolute path to a skills directory (repeatable)")
	rootCmd.PersistentFlags().StringArray("exclude", nil, "Glob of SKILL.md paths to skip, relative to their skills directory (repeatable)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (panic, fatal, error, warn, info, debug, trace)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, json)")
	rootCmd.PersistentFlags().String("color", "", "Color output (auto, always, never); defaults to SKILLS_MCP_COLOR")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress status messages; errors and data are still printed")

	viper.BindPFlag("skills_dirs", rootCmd.PersistentFlags().Lookup("skills-dir"))
	viper.BindPFlag("exclude", rootCmd.PersistentFlags().Lookup("exclude"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	addServeFlags(rootCmd, defaults)

	rootCmd.AddCommand(withTracing(serveCmd))
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(instructionsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}
