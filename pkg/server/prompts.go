package server

import (
	"context"

	"github.com/jingkaihe/skills-mcp/pkg/instructions"
	"github.com/mark3labs/mcp-go/mcp"
)

// InitSkillsPromptName is the MCP name of the onboarding prompt
const InitSkillsPromptName = "init-skills"

// InitSkillsPrompt primes a conversation with how to use the skills tools
type InitSkillsPrompt struct{}

// NewInitSkillsPrompt creates the init-skills prompt
func NewInitSkillsPrompt() *InitSkillsPrompt {
	return &InitSkillsPrompt{}
}

// Definition returns the MCP prompt definition
func (p *InitSkillsPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt(InitSkillsPromptName,
		mcp.WithPromptDescription("Initialize a conversation with skill awareness and usage instructions"),
	)
}

// Handle returns the usage instructions as a single user message
func (p *InitSkillsPrompt) Handle(_ context.Context, _ mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return mcp.NewGetPromptResult(
		"Initialize Skills",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(instructions.InitSkillsPrompt())),
		},
	), nil
}
