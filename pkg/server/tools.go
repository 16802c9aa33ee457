package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/jingkaihe/skills-mcp/pkg/logger"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pkg/errors"
)

const (
	// ListSkillsToolName is the MCP name of the discovery tool
	ListSkillsToolName = "list_skills"
	// GetSkillToolName is the MCP name of the loading tool
	GetSkillToolName = "get_skill"
)

// ListSkillsInput defines the input parameters for list_skills
type ListSkillsInput struct{}

// GetSkillInput defines the input parameters for get_skill
type GetSkillInput struct {
	ID string `json:"id" jsonschema:"description=The skill identifier (directory name)"`
}

// SkillSummary is one element of the list_skills output
type SkillSummary struct {
	ID          string `json:"id" jsonschema:"description=The skill identifier"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListSkillsOutput is the list_skills result
type ListSkillsOutput struct {
	Skills []SkillSummary `json:"skills"`
}

// GetSkillOutput is the get_skill result
type GetSkillOutput struct {
	Path        string `json:"path" jsonschema:"description=Absolute path to the skill's SKILL.md"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content" jsonschema:"description=The SKILL.md body without front-matter"`
}

// GenerateSchema generates the JSON schema for a tool's input parameters
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T

	return reflector.Reflect(v)
}

// newTool builds a read-only tool whose input schema is reflected from I
// and whose output schema is derived from O
func newTool[I, O any](name, title, description string) mcp.Tool {
	schema, err := json.Marshal(GenerateSchema[I]())
	if err != nil {
		// reflected schemas of the static input types always marshal
		panic(errors.Wrapf(err, "failed to marshal input schema for %s", name))
	}

	tool := mcp.NewToolWithRawSchema(name, description, schema)
	for _, opt := range []mcp.ToolOption{
		mcp.WithOutputSchema[O](),
		mcp.WithTitleAnnotation(title),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	} {
		opt(&tool)
	}
	return tool
}

// ListSkillsTool lists the metadata of every cached skill
type ListSkillsTool struct {
	registry Registry
}

// NewListSkillsTool creates the list_skills tool
func NewListSkillsTool(registry Registry) *ListSkillsTool {
	return &ListSkillsTool{registry: registry}
}

// Definition returns the MCP tool definition
func (t *ListSkillsTool) Definition() mcp.Tool {
	return newTool[ListSkillsInput, ListSkillsOutput](
		ListSkillsToolName,
		"List Skills",
		"List all available skills with their names and descriptions. Call this tool at the start of a conversation to discover available skills.",
	)
}

// Handle refreshes the registry when stale and returns every skill's metadata.
// A failed refresh is logged and the previous cache is served.
func (t *ListSkillsTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := t.registry.RefreshIfStale(ctx); err != nil {
		logger.G(ctx).WithError(err).Warn("failed to refresh skills, serving cached list")
	}

	infos := t.registry.SkillInfos()
	output := ListSkillsOutput{Skills: make([]SkillSummary, 0, len(infos))}
	for _, info := range infos {
		output.Skills = append(output.Skills, SkillSummary{
			ID:          info.ID,
			Name:        info.Metadata.Name,
			Description: info.Metadata.Description,
		})
	}

	return structuredResult(output)
}

// GetSkillTool returns a skill's instructions read fresh from disk
type GetSkillTool struct {
	registry Registry
}

// NewGetSkillTool creates the get_skill tool
func NewGetSkillTool(registry Registry) *GetSkillTool {
	return &GetSkillTool{registry: registry}
}

// Definition returns the MCP tool definition
func (t *GetSkillTool) Definition() mcp.Tool {
	return newTool[GetSkillInput, GetSkillOutput](
		GetSkillToolName,
		"Get Skill",
		"Get the full instructions (SKILL.md content) for a specific skill. Returns the skill content along with the absolute path to the skill file, enabling you to resolve and read any referenced resources (references/, scripts/, assets/) using your own file-reading tools.",
	)
}

// Handle looks up the skill. Misses are reported as tool errors, not
// protocol errors.
func (t *GetSkillTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input GetSkillInput
	if err := req.BindArguments(&input); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: invalid arguments: %s", err)), nil
	}
	id := input.ID
	if id == "" {
		return mcp.NewToolResultError("Error: required argument \"id\" not found"), nil
	}

	skill, ok := t.registry.GetSkill(ctx, id)
	if !ok {
		logger.G(ctx).WithField(logger.FieldSkillID, id).Debug("skill not found")
		return mcp.NewToolResultError(fmt.Sprintf("Error: Skill '%s' not found", id)), nil
	}

	return structuredResult(GetSkillOutput{
		Path:        skill.Info.Path,
		Name:        skill.Info.Metadata.Name,
		Description: skill.Info.Metadata.Description,
		Content:     skill.Content,
	})
}

// structuredResult returns output as structured content with the same value
// as indented JSON text for clients that ignore structured content
func structuredResult(output any) (*mcp.CallToolResult, error) {
	text, err := prettyJSON(output)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultStructured(output, text), nil
}

func prettyJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", errors.Wrap(err, "failed to marshal tool output")
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
