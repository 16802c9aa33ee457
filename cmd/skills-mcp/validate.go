package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jingkaihe/skills-mcp/pkg/lint"
	"github.com/jingkaihe/skills-mcp/pkg/presenter"
	"github.com/jingkaihe/skills-mcp/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type ValidateConfig struct {
	SkillsDirs []string
	Excludes   []string
	JSON       bool
	Strict     bool
}

func NewValidateConfig() *ValidateConfig {
	return &ValidateConfig{
		JSON:   false,
		Strict: false,
	}
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check skills for problems",
	Long: `Check every SKILL.md under the skills directories for invalid IDs, invalid or
missing name/description front-matter, duplicate IDs across directories and
relative links in the instructions that point at files which do not exist.

Exits with status 1 when any error is found, or any warning with --strict.`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		config := getValidateConfigFromFlags(cmd)

		ok, err := runValidateCommand(ctx, config, os.Stdout)
		if err != nil {
			presenter.Error(err, "failed to validate skills")
			os.Exit(1)
		}
		if !ok {
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewValidateConfig()
	validateCmd.Flags().Bool("json", defaults.JSON, "Print the report as JSON")
	validateCmd.Flags().Bool("strict", defaults.Strict, "Treat warnings as errors")
}

func getValidateConfigFromFlags(cmd *cobra.Command) *ValidateConfig {
	config := NewValidateConfig()
	config.SkillsDirs = viper.GetStringSlice("skills_dirs")
	config.Excludes = viper.GetStringSlice("exclude")

	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = jsonOutput
	}
	if strict, err := cmd.Flags().GetBool("strict"); err == nil {
		config.Strict = strict
	}

	return config
}

// runValidateCommand writes the report to w and reports whether the skills passed
func runValidateCommand(ctx context.Context, config *ValidateConfig, w io.Writer) (bool, error) {
	if err := validateSkillsDirs(config.SkillsDirs); err != nil {
		return false, err
	}

	excludes, err := skills.CompileExcludes(config.Excludes)
	if err != nil {
		return false, err
	}

	report, err := lint.New(skills.OSFileSystem{}).Run(ctx, config.SkillsDirs, excludes...)
	if err != nil {
		return false, errors.Wrap(err, "failed to lint skills directories")
	}

	passed := !report.HasErrors() && (!config.Strict || report.Warnings() == 0)

	if config.JSON {
		return passed, writeJSON(w, report)
	}

	p := presenter.NewWithOptions(w, w, presenter.ColorAuto)
	for _, issue := range report.Issues {
		switch issue.Severity {
		case lint.SeverityError:
			p.Error(errors.New(issue.Message), issue.Path)
		default:
			p.Warning(fmt.Sprintf("%s: %s", issue.Path, issue.Message))
		}
	}

	summary := fmt.Sprintf("Checked %d skill file(s): %d error(s), %d warning(s)", report.Files, report.Errors(), report.Warnings())
	if passed {
		p.Success(summary)
	} else {
		p.Error(errors.New(summary), "validation failed")
	}

	return passed, nil
}
