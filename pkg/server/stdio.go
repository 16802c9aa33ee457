package server

import (
	"context"
	"io"

	"github.com/jingkaihe/skills-mcp/pkg/logger"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ServeStdio serves s over newline-delimited JSON-RPC on in/out until ctx is
// cancelled or in is closed
func ServeStdio(ctx context.Context, s *mcpserver.MCPServer, in io.Reader, out io.Writer) error {
	stdio := mcpserver.NewStdioServer(s)
	stdio.SetErrorLogger(logger.StdLogger(ctx, logrus.ErrorLevel))

	logger.G(ctx).Info("serving MCP over stdio")

	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "stdio transport failed")
	}
	return nil
}
