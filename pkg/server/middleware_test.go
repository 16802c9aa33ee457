package server

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jingkaihe/skills-mcp/pkg/logger"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMiddleware(t *testing.T) {
	var seen []string

	handler := requestMiddleware(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fields := logger.G(ctx).Data
		assert.Equal(t, req.Params.Name, fields[logger.FieldTool])

		id, ok := fields[logger.FieldRequestID].(string)
		require.True(t, ok)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		seen = append(seen, id)

		return mcp.NewToolResultText("ok"), nil
	})

	for i := 0; i < 2; i++ {
		result, err := handler(context.Background(), callRequest(ListSkillsToolName, nil))
		require.NoError(t, err)
		assert.Equal(t, "ok", resultText(t, result))
	}

	require.Len(t, seen, 2)
	assert.NotEqual(t, seen[0], seen[1], "each call gets its own request id")
}

func TestRequestMiddlewarePassesErrorsThrough(t *testing.T) {
	handler := requestMiddleware(func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, errors.New("registry unavailable")
	})

	result, err := handler(context.Background(), callRequest(GetSkillToolName, map[string]any{"id": "x"}))
	assert.Nil(t, result)
	assert.EqualError(t, err, "registry unavailable")
}
