package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/yeehome/pkg/command"
)

var domainList = strings.Join(command.Domains(), ", ")

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	// Health check
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Check the health of the yeehome service and whether a gateway session is open"),
		),
		s.handleGetHealth,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("scan_gateway",
			mcp.WithDescription("Broadcast a discovery probe on the LAN and connect to the first gateway that answers"),
		),
		s.handleScanGateway,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("connect_gateway",
			mcp.WithDescription("Connect to a gateway at a known address, skipping discovery"),
			mcp.WithString("host",
				mcp.Required(),
				mcp.Description("Gateway IP address, optionally with :port"),
			),
		),
		s.handleConnectGateway,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_topology",
			mcp.WithDescription("List the devices, groups, scenes and rooms known to the gateway"),
			mcp.WithBoolean("cached",
				mcp.Description("Return the stored snapshot without contacting the gateway (default false)"),
			),
		),
		s.handleGetTopology,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("find_devices",
			mcp.WithDescription("Resolve a device name within a domain to topology nodes without sending a command"),
			mcp.WithString("domain",
				mcp.Required(),
				mcp.Description("Intent domain, one of: "+domainList),
			),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Spoken device, scene or room name"),
			),
			mcp.WithString("location",
				mcp.Description(`Room scope. "all" addresses every room in the room domain`),
			),
		),
		s.handleFindDevices,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("control_device",
			mcp.WithDescription("Execute a voice intent: resolve the target by name and send the control command to the gateway"),
			mcp.WithString("domain",
				mcp.Required(),
				mcp.Description("Intent domain, one of: "+domainList),
			),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Spoken device, scene or room name"),
			),
			mcp.WithString("action",
				mcp.Required(),
				mcp.Description("turn_on, turn_off, or any action whose properties are given in parameters"),
			),
			mcp.WithString("location",
				mcp.Description(`Room scope. "all" addresses every room in the room domain`),
			),
			mcp.WithObject("parameters",
				mcp.Description(`Extra node properties merged into the command (e.g. {"l": 80})`),
			),
		),
		s.handleControlDevice,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("execute_intent_text",
			mcp.WithDescription("Extract an intent object from raw language-model output and execute it"),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Model output containing a JSON intent, possibly after a reasoning block"),
			),
		),
		s.handleExecuteIntentText,
	)
}
