package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/yeehome/pkg/command"
	"github.com/urmzd/yeehome/pkg/gateway"
	"github.com/urmzd/yeehome/pkg/topology"
)

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gw := s.controller.Gateway()

	out := GetHealthOutput{
		Status:    "healthy",
		Gateway:   "connected",
		Address:   gw.Address,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if !gw.Connected {
		out.Status = "unhealthy"
		out.Gateway = "disconnected"
	}

	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleScanGateway(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := s.controller.ScanAndConnect(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to scan for gateway: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(s.gatewayOutput(info))), nil
}

func (s *Server) handleConnectGateway(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	host, err := requiredString(request, "host")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := s.controller.Connect(ctx, host)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to connect to gateway: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(s.gatewayOutput(info))), nil
}

func (s *Server) gatewayOutput(info *gateway.Info) GatewayOutput {
	status := s.controller.Gateway()
	out := GatewayOutput{
		Connected: status.Connected,
		Address:   status.Address,
	}
	if info != nil {
		out.Fields = info.Fields
	}
	return out
}

func (s *Server) handleGetTopology(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		nodes []topology.NodeInfo
		err   error
	)
	if optionalBool(request, "cached") {
		nodes, err = s.controller.CachedTopology(ctx)
	} else {
		nodes, err = s.controller.Topology(ctx)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get topology: %s", err)), nil
	}

	out := GetTopologyOutput{
		Nodes:       nodes,
		Count:       len(nodes),
		Description: topology.Describe(nodes),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleFindDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	intent, err := intentFromArgs(request, false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	nodes, err := s.controller.FindDevices(ctx, intent)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to find devices: %s", err)), nil
	}

	out := FindDevicesOutput{Devices: nodes, Count: len(nodes)}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleControlDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	intent, err := intentFromArgs(request, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.execute(ctx, intent)
}

func (s *Server) handleExecuteIntentText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := requiredString(request, "text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	intent, err := command.ExtractIntent(text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to extract intent: %s", err)), nil
	}
	return s.execute(ctx, *intent)
}

func (s *Server) execute(ctx context.Context, intent command.Intent) (*mcp.CallToolResult, error) {
	res, err := s.controller.Execute(ctx, intent)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to control device: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(ResultToOutput(intent, res))), nil
}

// --- helpers ---

func intentFromArgs(request mcp.CallToolRequest, withAction bool) (command.Intent, error) {
	var intent command.Intent
	var err error

	if intent.Domain, err = requiredString(request, "domain"); err != nil {
		return intent, err
	}
	if intent.Name, err = requiredString(request, "name"); err != nil {
		return intent, err
	}
	if withAction {
		if intent.Action, err = requiredString(request, "action"); err != nil {
			return intent, err
		}
	}

	args := request.GetArguments()
	if loc, ok := args["location"].(string); ok {
		intent.Location = loc
	}
	if params, ok := args["parameters"].(map[string]any); ok && len(params) > 0 {
		intent.Parameters = params
	}
	return intent, nil
}

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

func optionalBool(request mcp.CallToolRequest, key string) bool {
	b, _ := request.GetArguments()[key].(bool)
	return b
}

func formatJSON(v any) string {
	b, err := encodeJSON(v)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}

func encodeJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
