// Package instructions provides the embedded agent-facing guidance shipped
// with the server: the usage guide printed by `skills-mcp instructions` and
// the text returned by the init-skills prompt.
package instructions

import (
	_ "embed"
	"strings"
)

// XMLTag wraps the guide when it is appended to agent configuration files
const XMLTag = "skills-mcp-instructions"

//go:embed guide.md
var guide string

//go:embed init_skills.md
var initSkills string

// Guide returns the usage guide, wrapped in <skills-mcp-instructions> tags
// when xml is true.
func Guide(xml bool) string {
	text := strings.TrimSpace(guide)
	if !xml {
		return text
	}
	return "<" + XMLTag + ">\n" + text + "\n</" + XMLTag + ">"
}

// InitSkillsPrompt returns the user message sent by the init-skills prompt
func InitSkillsPrompt() string {
	return strings.TrimSpace(initSkills)
}
