package presenter

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPresenter() (*TerminalPresenter, *bytes.Buffer, *bytes.Buffer) {
	var output, errorOutput bytes.Buffer
	return NewWithOptions(&output, &errorOutput, ColorNever), &output, &errorOutput
}

func TestNew(t *testing.T) {
	p := New()
	assert.Equal(t, os.Stderr, p.output)
	assert.Equal(t, os.Stderr, p.errorOutput)
	assert.False(t, p.IsQuiet())
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		input   string
		want    ColorMode
		wantErr bool
	}{
		{input: "", want: ColorAuto},
		{input: "auto", want: ColorAuto},
		{input: "Always", want: ColorAlways},
		{input: "force", want: ColorAlways},
		{input: " never ", want: ColorNever},
		{input: "off", want: ColorNever},
		{input: "rainbow", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseColorMode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid color mode")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
		})
	}
}

func TestColorModeString(t *testing.T) {
	for _, mode := range []ColorMode{ColorAuto, ColorAlways, ColorNever} {
		parsed, err := ParseColorMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}
}

func TestDetectColorMode(t *testing.T) {
	tests := []struct {
		name     string
		noColor  string
		envColor string
		expected ColorMode
	}{
		{"NO_COLOR wins", "1", "always", ColorNever},
		{"always", "", "always", ColorAlways},
		{"never", "", "never", ColorNever},
		{"unset", "", "", ColorAuto},
		{"unrecognised falls back to auto", "", "rainbow", ColorAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("SKILLS_MCP_COLOR", tt.envColor)

			assert.Equal(t, tt.expected, DetectColorMode())
		})
	}
}

func TestNewWithOptionsAppliesColorMode(t *testing.T) {
	old := color.NoColor
	t.Cleanup(func() { color.NoColor = old })

	NewWithOptions(&bytes.Buffer{}, &bytes.Buffer{}, ColorAlways)
	assert.False(t, color.NoColor)

	NewWithOptions(&bytes.Buffer{}, &bytes.Buffer{}, ColorNever)
	assert.True(t, color.NoColor)

	NewWithOptions(&bytes.Buffer{}, &bytes.Buffer{}, ColorAuto)
	assert.True(t, color.NoColor, "auto leaves the current setting alone")
}

func TestError(t *testing.T) {
	p, output, errorOutput := newTestPresenter()

	p.Error(errors.New("no readable skills directories"), "failed to scan")
	assert.Equal(t, "[ERROR] failed to scan: no readable skills directories\n", errorOutput.String())
	assert.Empty(t, output.String(), "errors go to the error writer")

	errorOutput.Reset()
	p.Error(errors.New("boom"), "")
	assert.Equal(t, "[ERROR] boom\n", errorOutput.String())

	errorOutput.Reset()
	p.Error(nil, "context")
	assert.Empty(t, errorOutput.String())
}

func TestErrorShownInQuietMode(t *testing.T) {
	p, _, errorOutput := newTestPresenter()
	p.SetQuiet(true)

	p.Error(errors.New("boom"), "")
	assert.Contains(t, errorOutput.String(), "boom")
}

func TestStatusMessages(t *testing.T) {
	tests := []struct {
		name  string
		print func(p *TerminalPresenter)
		want  string
	}{
		{name: "success", print: func(p *TerminalPresenter) { p.Success("Loaded 2 skill(s)") }, want: "✓ Loaded 2 skill(s)\n"},
		{name: "warning", print: func(p *TerminalPresenter) { p.Warning("File watching disabled") }, want: "⚠ File watching disabled\n"},
		{name: "info", print: func(p *TerminalPresenter) { p.Info("Starting stdio transport...") }, want: "Starting stdio transport...\n"},
		{name: "item", print: func(p *TerminalPresenter) { p.Item("/srv/skills", "") }, want: "  - /srv/skills\n"},
		{name: "item with detail", print: func(p *TerminalPresenter) { p.Item("pdf-tools", "PDF Tools") }, want: "  - pdf-tools: PDF Tools\n"},
		{name: "section", print: func(p *TerminalPresenter) { p.Section("Skills directories") }, want: "Skills directories\n------------------\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, output, _ := newTestPresenter()
			tt.print(p)
			assert.Equal(t, tt.want, output.String())

			quiet, quietOutput, _ := newTestPresenter()
			quiet.SetQuiet(true)
			tt.print(quiet)
			assert.Empty(t, quietOutput.String(), "quiet mode suppresses %s", tt.name)
		})
	}
}

func TestTable(t *testing.T) {
	p, output, _ := newTestPresenter()
	p.SetQuiet(true)

	err := p.Table(
		[]string{"ID", "NAME"},
		[][]string{
			{"pdf-tools", "PDF Tools"},
			{"xlsx", "Spreadsheets"},
		},
	)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(output.String(), "\n"), "\n")
	require.Len(t, lines, 4, "tables are printed even in quiet mode")
	assert.Equal(t, "ID         NAME", lines[0])
	assert.Equal(t, "--         ----", lines[1])
	assert.Equal(t, "pdf-tools  PDF Tools", lines[2])
	assert.Equal(t, "xlsx       Spreadsheets", lines[3])
}

func TestQuietMode(t *testing.T) {
	p, _, _ := newTestPresenter()
	assert.False(t, p.IsQuiet())

	p.SetQuiet(true)
	assert.True(t, p.IsQuiet())

	p.SetQuiet(false)
	assert.False(t, p.IsQuiet())
}

func TestGlobalFunctions(t *testing.T) {
	original := defaultPresenter
	oldNoColor := color.NoColor
	t.Cleanup(func() {
		defaultPresenter = original
		color.NoColor = oldNoColor
	})

	testPresenter, output, errorOutput := newTestPresenter()
	defaultPresenter = testPresenter

	Error(errors.New("test error"), "error context")
	assert.Equal(t, "[ERROR] error context: test error\n", errorOutput.String())

	Success("success message")
	Warning("warning message")
	Info("info message")
	Section("Skills")
	Item("pdf-tools", "PDF Tools")
	assert.Equal(t, "✓ success message\n⚠ warning message\ninfo message\nSkills\n------\n  - pdf-tools: PDF Tools\n", output.String())

	Configure(ColorNever, true)
	assert.True(t, IsQuiet())
	assert.Equal(t, ColorNever, defaultPresenter.colorMode)
	assert.True(t, color.NoColor)

	output.Reset()
	Info("should not appear")
	assert.Empty(t, output.String())

	Configure(ColorAuto, false)
	assert.False(t, IsQuiet())
}
