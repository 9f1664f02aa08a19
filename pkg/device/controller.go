package device

import (
	"context"

	"github.com/urmzd/yeehome/pkg/command"
	"github.com/urmzd/yeehome/pkg/gateway"
	"github.com/urmzd/yeehome/pkg/topology"
)

// Controller drives one gateway on behalf of intent sources (HTTP, MCP, CLI).
type Controller interface {
	// ScanAndConnect discovers a gateway on the LAN and connects to it
	ScanAndConnect(ctx context.Context) (*gateway.Info, error)

	// Connect connects to a gateway at a known host, skipping discovery
	Connect(ctx context.Context, host string) (*gateway.Info, error)

	// Gateway returns the current session status
	Gateway() GatewayStatus

	// Topology fetches the topology from the gateway and caches it
	Topology(ctx context.Context) ([]topology.NodeInfo, error)

	// CachedTopology returns the last cached topology without touching the gateway
	CachedTopology(ctx context.Context) ([]topology.NodeInfo, error)

	// FindDevices resolves an intent to topology nodes without sending anything
	FindDevices(ctx context.Context, intent command.Intent) ([]topology.NodeInfo, error)

	// Execute resolves, builds and sends the control command for an intent
	Execute(ctx context.Context, intent command.Intent) (*Result, error)

	// IsConnected returns true if a gateway session is open
	IsConnected() bool

	// Close disconnects from the gateway
	Close()
}
