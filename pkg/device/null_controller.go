package device

import (
	"context"

	"github.com/urmzd/yeehome/pkg/command"
	"github.com/urmzd/yeehome/pkg/gateway"
	"github.com/urmzd/yeehome/pkg/topology"
)

// NullController is a no-op controller used when gateway access is disabled.
// It allows the API to run in limited mode and serves the empty topology.
type NullController struct{}

// NewNullController creates a new NullController.
func NewNullController() *NullController {
	return &NullController{}
}

func (c *NullController) ScanAndConnect(ctx context.Context) (*gateway.Info, error) {
	return nil, gateway.ErrNotConnected
}

func (c *NullController) Connect(ctx context.Context, host string) (*gateway.Info, error) {
	return nil, gateway.ErrNotConnected
}

func (c *NullController) Gateway() GatewayStatus {
	return GatewayStatus{}
}

func (c *NullController) Topology(ctx context.Context) ([]topology.NodeInfo, error) {
	return nil, gateway.ErrNotConnected
}

func (c *NullController) CachedTopology(ctx context.Context) ([]topology.NodeInfo, error) {
	return []topology.NodeInfo{}, nil
}

func (c *NullController) FindDevices(ctx context.Context, intent command.Intent) ([]topology.NodeInfo, error) {
	return nil, gateway.ErrNotConnected
}

func (c *NullController) Execute(ctx context.Context, intent command.Intent) (*Result, error) {
	return nil, gateway.ErrNotConnected
}

func (c *NullController) IsConnected() bool {
	return false
}

func (c *NullController) Close() {}
