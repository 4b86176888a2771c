// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the trackstat MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Trackstat Statistics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: evaluate_expression ---
	s.AddTool(mcp.NewTool("evaluate_expression",
		mcp.WithDescription("Evaluate a statistics expression and return every variable it defines."),
		mcp.WithString("code", mcp.Description("The expression source, e.g. 'result = sum(weight, 1d)'."), mcp.Required()),
		mcp.WithString("inputs", mcp.Description("Comma separated name=featureID bindings for stored series.")),
	), h.handleEvaluateExpression)

	// --- 2. Tool: solve_axis ---
	s.AddTool(mcp.NewTool("solve_axis",
		mcp.WithDescription("Choose y axis bounds and line count for a value range."),
		mcp.WithNumber("y_min", mcp.Description("Smallest value to show."), mcp.Required()),
		mcp.WithNumber("y_max", mcp.Description("Largest value to show."), mcp.Required()),
		mcp.WithBoolean("time_based", mcp.Description("Values are durations in seconds.")),
		mcp.WithBoolean("fixed", mcp.Description("Keep the given bounds instead of expanding them.")),
	), h.handleSolveAxis)

	// --- 3. Tool: render_graph ---
	s.AddTool(mcp.NewTool("render_graph",
		mcp.WithDescription("Render a line graph definition into plottable series and axis parameters."),
		mcp.WithString("graph_json", mcp.Description("The graph definition as JSON, using the same keys as a graph file."), mcp.Required()),
	), h.handleRenderGraph)

	// --- 4. Tool: find_bucket_start ---
	s.AddTool(mcp.NewTool("find_bucket_start",
		mcp.WithDescription("Find the start of the aggregation bucket containing a timestamp."),
		mcp.WithString("timestamp", mcp.Description("An RFC3339 timestamp or 'N units ago'."), mcp.Required()),
		mcp.WithString("temporal", mcp.Description("Bucket size such as 1h, 1d, 1w, 1mo, 3 months, 1y or P1M."), mcp.Required()),
	), h.handleFindBucketStart)

	return s
}

// StartMCPServer starts the trackstat MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
