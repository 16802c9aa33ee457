package main

import (
	"context"
	"io"
	"os"

	"github.com/jingkaihe/skills-mcp/pkg/presenter"
	"github.com/jingkaihe/skills-mcp/pkg/server"
	"github.com/jingkaihe/skills-mcp/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type ListConfig struct {
	SkillsDirs []string
	Excludes   []string
	JSON       bool
}

func NewListConfig() *ListConfig {
	return &ListConfig{
		JSON: false,
	}
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the skills the server would serve",
	Long:  `Scan the skills directories once and print every valid skill with its name, description and path. Invalid skills are logged and left out, exactly as the server does.`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		config := getListConfigFromFlags(cmd)
		if err := runListCommand(ctx, config, os.Stdout); err != nil {
			presenter.Error(err, "failed to list skills")
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewListConfig()
	listCmd.Flags().Bool("json", defaults.JSON, "Print the list_skills JSON output instead of a table")
}

func getListConfigFromFlags(cmd *cobra.Command) *ListConfig {
	config := NewListConfig()
	config.SkillsDirs = viper.GetStringSlice("skills_dirs")
	config.Excludes = viper.GetStringSlice("exclude")

	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = jsonOutput
	}

	return config
}

func runListCommand(ctx context.Context, config *ListConfig, w io.Writer) error {
	if err := validateSkillsDirs(config.SkillsDirs); err != nil {
		return err
	}

	registry, err := skills.NewRegistry(
		skills.WithSkillDirs(config.SkillsDirs...),
		skills.WithExcludes(config.Excludes...),
	)
	if err != nil {
		return err
	}
	if err := registry.Scan(ctx); err != nil {
		return errors.Wrap(err, "failed to scan skills directories")
	}

	infos := registry.SkillInfos()

	if config.JSON {
		output := server.ListSkillsOutput{Skills: make([]server.SkillSummary, 0, len(infos))}
		for _, info := range infos {
			output.Skills = append(output.Skills, server.SkillSummary{
				ID:          info.ID,
				Name:        info.Metadata.Name,
				Description: info.Metadata.Description,
			})
		}
		return writeJSON(w, output)
	}

	if len(infos) == 0 {
		presenter.Info("No skills found")
		return nil
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{info.ID, info.Metadata.Name, truncate(info.Metadata.Description, 60), info.Path})
	}

	p := presenter.NewWithOptions(w, os.Stderr, presenter.ColorAuto)
	return p.Table([]string{"ID", "NAME", "DESCRIPTION", "PATH"}, rows)
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
