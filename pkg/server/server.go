// Package server exposes a skills registry over the Model Context Protocol.
//
// Two tools are registered: list_skills returns lightweight metadata for
// discovery and get_skill returns a skill's instructions with the absolute
// path of its SKILL.md. The init-skills prompt and the server instructions
// carry the agent-facing usage guide.
package server

import (
	"context"

	"github.com/jingkaihe/skills-mcp/pkg/instructions"
	"github.com/jingkaihe/skills-mcp/pkg/skills"
	"github.com/jingkaihe/skills-mcp/pkg/version"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Name is the MCP server name advertised during initialization
const Name = "skills-mcp"

// Registry is the subset of *skills.Registry the MCP handlers need
type Registry interface {
	RefreshIfStale(ctx context.Context) (bool, error)
	SkillInfos() []skills.Info
	GetSkill(ctx context.Context, id string) (*skills.Skill, bool)
}

var _ Registry = (*skills.Registry)(nil)

// New creates an MCP server with the skills tools and prompt registered
func New(registry Registry) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(
		Name,
		version.Get().Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
		mcpserver.WithRecovery(),
		mcpserver.WithToolHandlerMiddleware(requestMiddleware),
		mcpserver.WithInstructions(instructions.Guide(false)),
	)

	listTool := NewListSkillsTool(registry)
	s.AddTool(listTool.Definition(), listTool.Handle)

	getTool := NewGetSkillTool(registry)
	s.AddTool(getTool.Definition(), getTool.Handle)

	initPrompt := NewInitSkillsPrompt()
	s.AddPrompt(initPrompt.Definition(), initPrompt.Handle)

	return s
}
