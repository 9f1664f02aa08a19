package mcp

import (
	"github.com/urmzd/yeehome/pkg/command"
	"github.com/urmzd/yeehome/pkg/device"
	"github.com/urmzd/yeehome/pkg/topology"
)

// --- Health Tool ---

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	Status    string `json:"status" jsonschema:"description=Overall health status (healthy or unhealthy)"`
	Gateway   string `json:"gateway" jsonschema:"description=Gateway session status"`
	Address   string `json:"address,omitempty" jsonschema:"description=Connected gateway address"`
	Timestamp string `json:"timestamp" jsonschema:"description=ISO8601 timestamp"`
}

// --- Gateway Tools ---

// ConnectGatewayInput is the input for the connect_gateway tool
type ConnectGatewayInput struct {
	Host string `json:"host" jsonschema:"required,description=Gateway IP address, optionally with :port"`
}

// GatewayOutput is the output for the scan_gateway and connect_gateway tools
type GatewayOutput struct {
	Connected bool              `json:"connected" jsonschema:"description=Whether a session is open"`
	Address   string            `json:"address" jsonschema:"description=Gateway control address"`
	Fields    map[string]string `json:"fields,omitempty" jsonschema:"description=Discovery announcement fields"`
}

// --- Topology Tool ---

// GetTopologyInput is the input for the get_topology tool
type GetTopologyInput struct {
	Cached bool `json:"cached,omitempty" jsonschema:"description=Return the stored snapshot"`
}

// GetTopologyOutput is the output for the get_topology tool
type GetTopologyOutput struct {
	Nodes       []topology.NodeInfo `json:"nodes" jsonschema:"description=Topology nodes"`
	Count       int                 `json:"count" jsonschema:"description=Number of nodes"`
	Description string              `json:"description" jsonschema:"description=Node names grouped by type"`
}

// --- Find Devices Tool ---

// FindDevicesOutput is the output for the find_devices tool
type FindDevicesOutput struct {
	Devices []topology.NodeInfo `json:"devices" jsonschema:"description=Matched nodes"`
	Count   int                 `json:"count" jsonschema:"description=Number of matched nodes"`
}

// --- Control Tools ---

// ControlDeviceOutput is the output for the control_device and
// execute_intent_text tools
type ControlDeviceOutput struct {
	Intent  command.Intent      `json:"intent" jsonschema:"description=Executed intent"`
	Message string              `json:"message" jsonschema:"description=Human-readable outcome"`
	Targets []topology.NodeInfo `json:"targets" jsonschema:"description=Nodes the command addressed"`
}

// --- Helper conversions ---

// ResultToOutput converts an executed intent into tool output
func ResultToOutput(intent command.Intent, res *device.Result) ControlDeviceOutput {
	return ControlDeviceOutput{
		Intent:  intent,
		Message: res.Message,
		Targets: res.Targets,
	}
}
