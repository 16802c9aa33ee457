// Package presenter renders user-facing CLI output: status lines, indented
// lists and tables, with color support and quiet mode.
// Status output goes to stderr by default because stdout may carry the MCP stdio stream.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// Presenter defines the interface for consistent CLI output
type Presenter interface {
	Error(err error, context string)
	Success(message string)
	Warning(message string)
	Info(message string)
	Item(label, detail string)
	Section(title string)
	Table(headers []string, rows [][]string) error
	SetQuiet(quiet bool)
	IsQuiet() bool
}

// TerminalPresenter implements Presenter for terminal output
type TerminalPresenter struct {
	output      io.Writer
	errorOutput io.Writer
	colorMode   ColorMode
	quiet       bool
}

// ColorMode represents different color output modes
type ColorMode int

const (
	// ColorAuto lets fatih/color decide based on the terminal
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output
	ColorAlways
	// ColorNever disables colored output
	ColorNever
)

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode accepts auto, always (or force) and never (or off).
// An empty string means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "always", "force":
		return ColorAlways, nil
	case "never", "off":
		return ColorNever, nil
	default:
		return ColorAuto, errors.Errorf("invalid color mode %q, must be one of: auto, always, never", s)
	}
}

// DetectColorMode reads NO_COLOR and SKILLS_MCP_COLOR. Unrecognised values
// fall back to ColorAuto.
func DetectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}

	mode, err := ParseColorMode(os.Getenv("SKILLS_MCP_COLOR"))
	if err != nil {
		return ColorAuto
	}
	return mode
}

func applyColorMode(mode ColorMode) {
	switch mode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	}
}

// New creates a TerminalPresenter writing to stderr
func New() *TerminalPresenter {
	return NewWithOptions(os.Stderr, os.Stderr, DetectColorMode())
}

// NewWithOptions creates a TerminalPresenter with custom writers. ColorAlways
// and ColorNever change the process-wide fatih/color setting.
func NewWithOptions(output, errorOutput io.Writer, colorMode ColorMode) *TerminalPresenter {
	applyColorMode(colorMode)

	return &TerminalPresenter{
		output:      output,
		errorOutput: errorOutput,
		colorMode:   colorMode,
	}
}

// Error displays an error message. Errors are shown even in quiet mode.
func (p *TerminalPresenter) Error(err error, context string) {
	if err == nil {
		return
	}

	errorColor := color.New(color.FgRed, color.Bold)
	if context != "" {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %s: %v\n", context, err)
	} else {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %v\n", err)
	}
}

// Success displays a success message
func (p *TerminalPresenter) Success(message string) {
	if p.quiet {
		return
	}

	color.New(color.FgGreen, color.Bold).Fprintf(p.output, "✓ %s\n", message)
}

// Warning displays a warning message
func (p *TerminalPresenter) Warning(message string) {
	if p.quiet {
		return
	}

	color.New(color.FgYellow, color.Bold).Fprintf(p.output, "⚠ %s\n", message)
}

// Info displays an informational message
func (p *TerminalPresenter) Info(message string) {
	if p.quiet {
		return
	}

	fmt.Fprintln(p.output, message)
}

// Item displays an indented list entry, with the detail dimmed
func (p *TerminalPresenter) Item(label, detail string) {
	if p.quiet {
		return
	}

	if detail == "" {
		fmt.Fprintf(p.output, "  - %s\n", label)
		return
	}
	fmt.Fprintf(p.output, "  - %s: ", label)
	color.New(color.Faint).Fprintf(p.output, "%s\n", detail)
}

// Section displays a bold title underlined with dashes
func (p *TerminalPresenter) Section(title string) {
	if p.quiet {
		return
	}

	headerColor := color.New(color.Bold)
	headerColor.Fprintf(p.output, "%s\n", title)
	headerColor.Fprintf(p.output, "%s\n", strings.Repeat("-", len(title)))
}

// Table writes rows as aligned columns under headers, each header underlined
// with dashes. Tables are data rather than status, so quiet mode does not
// suppress them. Cells are left uncolored to keep columns aligned.
func (p *TerminalPresenter) Table(headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(p.output, 0, 0, 2, ' ', 0)

	underline := make([]string, len(headers))
	for i, header := range headers {
		underline[i] = strings.Repeat("-", len(header))
	}

	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	fmt.Fprintln(tw, strings.Join(underline, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return errors.Wrap(tw.Flush(), "failed to write table")
}

// SetQuiet enables or disables quiet mode
func (p *TerminalPresenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// IsQuiet returns whether quiet mode is enabled
func (p *TerminalPresenter) IsQuiet() bool {
	return p.quiet
}

var defaultPresenter = New()

// Configure applies the color mode and quiet setting to the default presenter
func Configure(mode ColorMode, quiet bool) {
	applyColorMode(mode)
	defaultPresenter.colorMode = mode
	defaultPresenter.SetQuiet(quiet)
}

// Error displays an error message using the default presenter instance.
func Error(err error, context string) {
	defaultPresenter.Error(err, context)
}

// Success displays a success message using the default presenter instance.
func Success(message string) {
	defaultPresenter.Success(message)
}

// Warning displays a warning message using the default presenter instance.
func Warning(message string) {
	defaultPresenter.Warning(message)
}

// Info displays an informational message using the default presenter instance.
func Info(message string) {
	defaultPresenter.Info(message)
}

// Item displays a list entry using the default presenter instance.
func Item(label, detail string) {
	defaultPresenter.Item(label, detail)
}

// Section displays a section header using the default presenter instance.
func Section(title string) {
	defaultPresenter.Section(title)
}

// IsQuiet returns whether quiet mode is enabled for the default presenter instance.
func IsQuiet() bool {
	return defaultPresenter.IsQuiet()
}
