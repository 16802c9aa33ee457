package skills

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"
	"github.com/jingkaihe/skills-mcp/pkg/logger"
	"github.com/pkg/errors"
)

var skillFilePattern = "**/" + SkillFileName

// CompileExcludes compiles exclusion globs. Patterns match the slash
// separated path of a SKILL.md relative to its root, e.g. "drafts/**".
func CompileExcludes(patterns []string) ([]glob.Glob, error) {
	excludes := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.Wrapf(err, "invalid exclude pattern %q", pattern)
		}
		excludes = append(excludes, g)
	}
	return excludes, nil
}

// Discover returns the absolute paths of every SKILL.md under roots that is
// not excluded, in root order and then lexical order within a root
func Discover(ctx context.Context, fsys FileSystem, roots []string, excludes ...glob.Glob) ([]string, error) {
	return discoverSkillFiles(ctx, fsys, roots, excludes...)
}

// discoverSkillFiles returns the absolute paths of every SKILL.md under the
// given roots, in root order and then lexical order within a root. Roots that
// cannot be read are skipped; it only fails when none of them could be read.
func discoverSkillFiles(ctx context.Context, fsys FileSystem, roots []string, excludes ...glob.Glob) ([]string, error) {
	if len(roots) == 0 {
		return nil, errors.New("no skills directories configured")
	}

	var (
		paths    []string
		failures *multierror.Error
		readable int
	)

	for _, root := range roots {
		matches, err := discoverInRoot(fsys, root, excludes)
		if err != nil {
			logger.G(ctx).WithError(err).WithField(logger.FieldDir, root).Warn("failed to scan skills directory")
			failures = multierror.Append(failures, err)
			continue
		}
		readable++
		paths = append(paths, matches...)
	}

	if readable == 0 {
		failures.ErrorFormat = joinViolations
		return nil, errors.Wrap(failures, "no readable skills directories")
	}

	return paths, nil
}

func discoverInRoot(fsys FileSystem, root string, excludes []glob.Glob) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve skills directory %s", root)
	}

	info, err := fsys.Stat(absRoot)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat skills directory %s", absRoot)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("skills directory %s is not a directory", absRoot)
	}

	matches, err := doublestar.Glob(fsys.DirFS(absRoot), skillFilePattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to glob skills directory %s", absRoot)
	}
	sort.Strings(matches)

	paths := make([]string, 0, len(matches))
	for _, match := range matches {
		if excluded(match, excludes) {
			continue
		}
		paths = append(paths, filepath.Join(absRoot, filepath.FromSlash(match)))
	}

	return paths, nil
}

func excluded(match string, excludes []glob.Glob) bool {
	for _, g := range excludes {
		if g.Match(match) {
			return true
		}
	}
	return false
}
