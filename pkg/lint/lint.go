// Package lint checks skill directories for problems that would make a skill
// invisible or misleading to agents: invalid IDs, bad metadata, duplicate IDs
// and relative links in the instructions that point at missing files.
package lint

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/jingkaihe/skills-mcp/pkg/skills"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Severity of an issue
type Severity string

const (
	// SeverityError marks a skill the server would skip or serve incorrectly
	SeverityError Severity = "error"
	// SeverityWarning marks a skill that loads but is likely to confuse agents
	SeverityWarning Severity = "warning"
)

// Issue is a single finding for a SKILL.md file
type Issue struct {
	Path     string   `json:"path"`
	SkillID  string   `json:"skill_id"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Path, i.Message)
}

// Report is the outcome of linting a set of skill directories
type Report struct {
	Files  int     `json:"files"`
	Issues []Issue `json:"issues"`
}

// Errors returns the number of error issues
func (r *Report) Errors() int {
	return r.count(SeverityError)
}

// Warnings returns the number of warning issues
func (r *Report) Warnings() int {
	return r.count(SeverityWarning)
}

// HasErrors reports whether any issue is an error
func (r *Report) HasErrors() bool {
	return r.Errors() > 0
}

func (r *Report) count(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

// Linter checks SKILL.md files
type Linter struct {
	fsys skills.FileSystem
	md   goldmark.Markdown
}

// New creates a Linter reading through fsys
func New(fsys skills.FileSystem) *Linter {
	return &Linter{
		fsys: fsys,
		md: goldmark.New(
			goldmark.WithExtensions(meta.Meta),
		),
	}
}

// Run lints every SKILL.md under roots. The error is non-nil only when no
// root could be read.
func (l *Linter) Run(ctx context.Context, roots []string, excludes ...glob.Glob) (*Report, error) {
	paths, err := skills.Discover(ctx, l.fsys, roots, excludes...)
	if err != nil {
		return nil, err
	}

	report := &Report{Files: len(paths)}
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		id := skills.IDFromPath(path)
		report.Issues = append(report.Issues, l.LintFile(path)...)

		if previous, ok := seen[id]; ok {
			report.Issues = append(report.Issues, Issue{
				Path:     path,
				SkillID:  id,
				Severity: SeverityError,
				Message:  fmt.Sprintf("duplicate skill ID %q, overrides %s", id, previous),
			})
		}
		seen[id] = path
	}

	return report, nil
}

// LintFile checks a single SKILL.md
func (l *Linter) LintFile(path string) []Issue {
	id := skills.IDFromPath(path)
	issue := func(severity Severity, format string, args ...any) Issue {
		return Issue{Path: path, SkillID: id, Severity: severity, Message: fmt.Sprintf(format, args...)}
	}

	var issues []Issue
	if !skills.ValidateID(id) {
		issues = append(issues, issue(SeverityError, "invalid skill ID %q, must be lowercase letters, digits and single hyphens", id))
	}

	file, err := skills.ReadSkillFile(l.fsys, path)
	if err != nil {
		var verr *skills.ValidationError
		if errors.As(err, &verr) {
			return append(issues, issue(SeverityError, "invalid metadata: %v", verr.Err))
		}
		return append(issues, issue(SeverityError, "%v", err))
	}

	if strings.TrimSpace(file.Metadata.Name) == "" {
		issues = append(issues, issue(SeverityWarning, "name is empty"))
	}
	if strings.TrimSpace(file.Metadata.Description) == "" {
		issues = append(issues, issue(SeverityWarning, "description is empty, agents cannot tell when to use this skill"))
	}
	if strings.TrimSpace(file.Body) == "" {
		issues = append(issues, issue(SeverityWarning, "instructions body is empty"))
	}

	content, err := l.fsys.ReadFile(path)
	if err != nil {
		return append(issues, issue(SeverityError, "failed to read file: %v", err))
	}
	content = bytes.TrimPrefix(content, []byte("\ufeff"))

	pctx := parser.NewContext()
	doc := l.md.Parser().Parse(text.NewReader(content), parser.WithContext(pctx))
	if _, err := meta.TryGet(pctx); err != nil {
		issues = append(issues, issue(SeverityWarning, "front-matter is not portable YAML: %v", err))
	}

	skillDir := filepath.Dir(path)
	for _, dest := range linkDestinations(doc) {
		target, ok := localTarget(dest)
		if !ok {
			continue
		}

		resolved := filepath.Join(skillDir, filepath.FromSlash(target))
		if rel, err := filepath.Rel(skillDir, resolved); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			issues = append(issues, issue(SeverityWarning, "link %q points outside the skill directory", dest))
		}
		if _, err := l.fsys.Stat(resolved); err != nil {
			issues = append(issues, issue(SeverityError, "broken link %q: %s does not exist", dest, resolved))
		}
	}

	return issues
}

// linkDestinations returns the destinations of every link and image in doc,
// deduplicated and sorted
func linkDestinations(doc ast.Node) []string {
	set := make(map[string]struct{})
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			set[string(node.Destination)] = struct{}{}
		case *ast.Image:
			set[string(node.Destination)] = struct{}{}
		}
		return ast.WalkContinue, nil
	})

	dests := make([]string, 0, len(set))
	for dest := range set {
		dests = append(dests, dest)
	}
	sort.Strings(dests)
	return dests
}

// localTarget returns the file path a link points at, or false for anchors,
// URLs with a scheme and absolute paths
func localTarget(dest string) (string, bool) {
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "/") {
		return "", false
	}

	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}

	if u.Path == "" {
		return "", false
	}
	return u.Path, true
}
