package server

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jingkaihe/skills-mcp/pkg/logger"
	"github.com/jingkaihe/skills-mcp/pkg/telemetry"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = telemetry.Tracer("skills-mcp.server")

// requestMiddleware gives every tool call a request id, a logger carrying it
// and a span
func requestMiddleware(next mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		requestID := uuid.NewString()
		tool := req.Params.Name

		ctx, span := tracer.Start(ctx, "mcp.tool."+tool, trace.WithAttributes(
			attribute.String("mcp.tool", tool),
			attribute.String("request.id", requestID),
		))
		defer span.End()

		ctx = logger.WithFields(ctx, logrus.Fields{
			logger.FieldRequestID: requestID,
			logger.FieldTool:      tool,
		})
		log := logger.G(ctx)

		start := time.Now()
		result, err := next(ctx, req)
		duration := time.Since(start)

		switch {
		case err != nil:
			telemetry.RecordError(ctx, err)
			log.WithError(err).WithField("duration", duration).Error("tool call failed")
		case result != nil && result.IsError:
			span.SetStatus(codes.Error, "tool returned an error result")
			log.WithField("duration", duration).Info("tool call returned an error result")
		default:
			log.WithField("duration", duration).Info("tool call completed")
		}

		return result, err
	}
}
