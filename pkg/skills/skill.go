// Package skills discovers skill packages on disk and keeps an in-memory
// registry of their metadata. A skill is a directory containing a SKILL.md
// file with YAML frontmatter (name and description) followed by markdown
// instructions. The directory name is the skill ID.
package skills

import "time"

// SkillFileName is the fixed name of the instructions file anchoring a skill
const SkillFileName = "SKILL.md"

// Metadata represents the validated YAML frontmatter of a SKILL.md file
type Metadata struct {
	Name        string `mapstructure:"name" json:"name"`
	Description string `mapstructure:"description" json:"description"`
}

// Info is the cached view of a skill. It never carries the body.
type Info struct {
	ID           string    // Parent directory name of the SKILL.md file
	Path         string    // Absolute path to SKILL.md
	Metadata     Metadata  // Metadata as of the last read
	LastModified time.Time // Modification time of the file as of the last read
}

// Entry is a registry slot for a single skill
type Entry struct {
	Info        Info
	LastChecked time.Time // Wall clock time the registry last read the file
}

// Skill is a skill with its instructions loaded from disk
type Skill struct {
	Info
	Content string // SKILL.md body without frontmatter, trimmed
}
