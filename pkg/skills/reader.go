package skills

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// FileSystem is the filesystem surface the registry depends on
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	// DirFS returns a filesystem rooted at dir, used for discovery
	DirFS(dir string) fs.FS
}

// OSFileSystem implements FileSystem on top of the os package
type OSFileSystem struct{}

// Stat returns the file info for name
func (OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

// ReadFile reads the named file
func (OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// DirFS returns os.DirFS(dir)
func (OSFileSystem) DirFS(dir string) fs.FS {
	return os.DirFS(dir)
}

// SkillFile is the result of reading and parsing a SKILL.md file once
type SkillFile struct {
	Metadata     Metadata
	Body         string
	LastModified time.Time
}

// ReadSkillFile reads, parses and validates a SKILL.md file. Validation
// failures are returned as *ValidationError; everything else is wrapped with
// the offending path.
func ReadSkillFile(fsys FileSystem, path string) (*SkillFile, error) {
	content, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse skill file %s", path)
	}

	info, err := fsys.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse skill file %s", path)
	}

	record, body, err := ParseFrontmatter(content)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse skill file %s", path)
	}

	metadata, err := ValidateMetadata(record)
	if err != nil {
		return nil, &ValidationError{Path: path, Err: err}
	}

	return &SkillFile{
		Metadata:     metadata,
		Body:         body,
		LastModified: info.ModTime(),
	}, nil
}

// IDFromPath derives the skill ID from the directory containing the SKILL.md file
func IDFromPath(skillFilePath string) string {
	return filepath.Base(filepath.Dir(skillFilePath))
}
