package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/trackstat/core"
	"github.com/huangsam/trackstat/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// pointStore returns the managed point store, or nil when running without one.
func (h *toolHandler) pointStore() contract.PointStore {
	if h.mgr == nil {
		return nil
	}
	return h.mgr.GetPointStore()
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleEvaluateExpression(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code := request.GetString("code", "")
	if strings.TrimSpace(code) == "" {
		return mcp.NewToolResultError("code is required"), nil
	}
	inputs, err := contract.ParseInputBindings(contract.SplitList(request.GetString("inputs", "")))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid inputs: %v", err)), nil
	}

	var source contract.DataSource
	if store := h.pointStore(); store != nil {
		source = store
	}
	bindings, err := core.EvaluateExpression(ctx, source, code, inputs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}
	return jsonResult(bindings)
}

func (h *toolHandler) handleSolveAxis(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	yMin, err := request.RequireFloat("y_min")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	yMax, err := request.RequireFloat("y_max")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if yMin > yMax {
		return mcp.NewToolResultError(fmt.Sprintf("y_min must not exceed y_max (received %g, %g)", yMin, yMax)), nil
	}

	result, err := core.SolveAxis(yMin, yMax, request.GetBool("time_based", false), request.GetBool("fixed", false), false)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("axis solving failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleRenderGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := contract.ParseGraph([]byte(request.GetString("graph_json", "")), "json")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid graph definition: %v", err)), nil
	}

	store := h.pointStore()
	if store == nil {
		return mcp.NewToolResultError("rendering a graph needs a point store"), nil
	}
	graph, err := raw.Validate(ctx, store, time.Now())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid graph definition: %v", err)), nil
	}

	data, err := core.RenderGraph(ctx, h.baseCfg.Clone(), h.mgr, graph)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rendering failed: %v", err)), nil
	}
	return jsonResult(data)
}

func (h *toolHandler) handleFindBucketStart(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tsStr := request.GetString("timestamp", "")
	if tsStr == "" {
		return mcp.NewToolResultError("timestamp is required"), nil
	}
	ts, err := contract.ParseTimestamp(tsStr, time.Now())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid timestamp: %v", err)), nil
	}

	result, err := core.FindBucketStart(h.baseCfg.Prefs, ts, request.GetString("temporal", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid temporal: %v", err)), nil
	}
	return jsonResult(result)
}
