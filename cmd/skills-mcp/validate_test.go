package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/jingkaihe/skills-mcp/pkg/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunValidateCommand(t *testing.T) {
	t.Run("clean skills pass", func(t *testing.T) {
		root := t.TempDir()
		writeSkill(t, root, "hello", "---\nname: Hello\ndescription: Says hello\n---\nHi.\n")

		var out bytes.Buffer
		config := NewValidateConfig()
		config.SkillsDirs = []string{root}

		ok, err := runValidateCommand(context.Background(), config, &out)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Contains(t, out.String(), "Checked 1 skill file(s): 0 error(s), 0 warning(s)")
	})

	t.Run("broken link fails", func(t *testing.T) {
		root := t.TempDir()
		path := writeSkill(t, root, "hello", "---\nname: Hello\ndescription: Says hello\n---\nSee [guide](references/GUIDE.md).\n")

		var out bytes.Buffer
		config := NewValidateConfig()
		config.SkillsDirs = []string{root}

		ok, err := runValidateCommand(context.Background(), config, &out)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Contains(t, out.String(), path)
		assert.Contains(t, out.String(), `broken link "references/GUIDE.md"`)
		assert.Contains(t, out.String(), "1 error(s)")
	})

	t.Run("warnings fail only in strict mode", func(t *testing.T) {
		root := t.TempDir()
		writeSkill(t, root, "empty", "---\nname: Empty\ndescription: Nothing inside\n---\n")

		config := NewValidateConfig()
		config.SkillsDirs = []string{root}

		ok, err := runValidateCommand(context.Background(), config, &bytes.Buffer{})
		require.NoError(t, err)
		assert.True(t, ok)

		config.Strict = true
		ok, err = runValidateCommand(context.Background(), config, &bytes.Buffer{})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("json report", func(t *testing.T) {
		root := t.TempDir()
		writeSkill(t, root, "Bad_ID", "---\nname: Bad\ndescription: Bad\n---\nBody.\n")

		var out bytes.Buffer
		config := NewValidateConfig()
		config.SkillsDirs = []string{root}
		config.JSON = true

		ok, err := runValidateCommand(context.Background(), config, &out)
		require.NoError(t, err)
		assert.False(t, ok)

		var report lint.Report
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		assert.Equal(t, 1, report.Files)
		require.Len(t, report.Issues, 1)
		assert.Equal(t, lint.SeverityError, report.Issues[0].Severity)
		assert.Equal(t, "Bad_ID", report.Issues[0].SkillID)
	})

	t.Run("invalid exclude pattern", func(t *testing.T) {
		config := NewValidateConfig()
		config.SkillsDirs = []string{t.TempDir()}
		config.Excludes = []string{"[oops"}

		_, err := runValidateCommand(context.Background(), config, &bytes.Buffer{})
		require.Error(t, err)
	})

	t.Run("unreadable directories", func(t *testing.T) {
		config := NewValidateConfig()
		config.SkillsDirs = []string{filepath.Join(t.TempDir(), "missing")}

		_, err := runValidateCommand(context.Background(), config, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to lint skills directories")
	})
}
