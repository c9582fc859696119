package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/overload/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return storage.LocalUser
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Overload", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Overload progression server. Look up exercises, their current prescription and history, "+
			"and preview what the next session should be from the reps a lifter achieved. Previews never change stored state. "+
			"All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolPreviewPrescription, Handler: h.previewPrescription},
		server.ServerTool{Tool: toolRoundWeight, Handler: h.roundWeight},
		server.ServerTool{Tool: toolGetProgressionState, Handler: h.getProgressionState},
		server.ServerTool{Tool: toolGetProgressionHistory, Handler: h.getProgressionHistory},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetWorkoutSets, Handler: h.getWorkoutSets},
		server.ServerTool{Tool: toolGetTrainingSummary, Handler: h.getTrainingSummary},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
		server.ServerResource{Resource: resRecentSets, Handler: h.recentSets},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resExerciseCatalog = mcp.NewResource(
	"overload://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("Every exercise in the library with its equipment and rounding configuration"),
	mcp.WithMIMEType("application/json"),
)

var resRecentSets = mcp.NewResource(
	"overload://recent_sets",
	"Recent Sets",
	mcp.WithResourceDescription("Logged sets from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)
