package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/yeehome/pkg/command"
	"github.com/urmzd/yeehome/pkg/command/schema"
	"github.com/urmzd/yeehome/pkg/gateway"
	"github.com/urmzd/yeehome/pkg/progress"
	"github.com/urmzd/yeehome/pkg/topology"
)

// Options configures a GatewayController. Store, Registry and Reporter are
// optional.
type Options struct {
	Session   gateway.Options
	Discovery gateway.DiscoverOptions

	Store     TopologyStore
	Registry  GatewayRegistry
	Reporter  progress.Reporter
	Validator *schema.Validator

	// PreferCachedTopology resolves intents against the stored topology when
	// one exists, refreshing from the gateway only on a miss.
	PreferCachedTopology bool
}

// GatewayController implements Controller over a single gateway session.
// Whole cycles (scan, fetch, execute) are serialized.
type GatewayController struct {
	manager     *gateway.Manager
	discovery   gateway.DiscoverOptions
	store       TopologyStore
	registry    GatewayRegistry
	reporter    progress.Reporter
	validator   *schema.Validator
	preferCache bool

	mu sync.Mutex

	statusMu    sync.RWMutex
	info        *gateway.Info
	connectedAt time.Time
}

var _ Controller = (*GatewayController)(nil)

// NewGatewayController creates a controller with no open session.
func NewGatewayController(opts Options) *GatewayController {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = progress.Nop{}
	}
	validator := opts.Validator
	if validator == nil {
		validator = schema.NewValidator()
	}
	return &GatewayController{
		manager:     gateway.NewManager(opts.Session),
		discovery:   opts.Discovery,
		store:       opts.Store,
		registry:    opts.Registry,
		reporter:    reporter,
		validator:   validator,
		preferCache: opts.PreferCachedTopology,
	}
}

func (c *GatewayController) ScanAndConnect(ctx context.Context) (*gateway.Info, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reporter.Report(progress.LevelInfo, "扫描发现附近网关")

	info, err := gateway.Discover(ctx, c.discovery)
	if err != nil {
		progress.Reportf(c.reporter, progress.LevelError, "扫描网关失败: %v", err)
		return nil, err
	}
	progress.Reportf(c.reporter, progress.LevelInfo, "扫描到网关信息：%s", formatFields(info.Fields))

	if err := c.connect(ctx, info); err != nil {
		return nil, err
	}
	return info, nil
}

// Connect opens a session to host, which may carry an explicit port.
// Without one the control port is used.
func (c *GatewayController) Connect(ctx context.Context, host string) (*gateway.Info, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	addr := gateway.NewAddress(host)
	if h, p, err := net.SplitHostPort(host); err == nil {
		if port, err := strconv.Atoi(p); err == nil {
			addr = gateway.Address{Host: h, Port: port}
		}
	}

	info := &gateway.Info{IP: addr.Host, Fields: map[string]string{"ip": addr.Host}}
	if err := c.connectTo(ctx, info, addr); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *GatewayController) connect(ctx context.Context, info *gateway.Info) error {
	return c.connectTo(ctx, info, info.Address())
}

func (c *GatewayController) connectTo(ctx context.Context, info *gateway.Info, addr gateway.Address) error {
	if _, err := c.manager.Connect(ctx, addr); err != nil {
		progress.Reportf(c.reporter, progress.LevelError, "连接网关失败: %v", err)
		return err
	}
	progress.Reportf(c.reporter, progress.LevelInfo, "成功连接到网关: %s", addr)

	c.statusMu.Lock()
	c.info = info
	c.connectedAt = time.Now()
	c.statusMu.Unlock()

	if c.registry != nil {
		if err := c.registry.Remember(ctx, info.IP, info.Fields); err != nil {
			log.Warn().Err(err).Str("ip", info.IP).Msg("Failed to remember gateway")
		}
	}
	return nil
}

func (c *GatewayController) Gateway() GatewayStatus {
	conn, err := c.manager.Current()
	if err != nil {
		return GatewayStatus{}
	}

	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	return GatewayStatus{
		Connected:   true,
		Address:     conn.Addr().String(),
		Info:        c.info,
		ConnectedAt: c.connectedAt,
	}
}

func (c *GatewayController) Topology(ctx context.Context) ([]topology.NodeInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refresh(ctx)
}

// refresh fetches a fresh topology and caches it. Callers hold c.mu.
func (c *GatewayController) refresh(ctx context.Context) ([]topology.NodeInfo, error) {
	nodes, err := topology.Fetch(ctx, c.manager)
	if err != nil {
		progress.Reportf(c.reporter, progress.LevelError, "获取拓扑失败: %v", err)
		return nil, err
	}
	progress.Reportf(c.reporter, progress.LevelInfo, "获取拓扑成功，共 %d 个节点", len(nodes))

	if c.store != nil {
		if err := c.store.ReplaceNodes(ctx, nodes); err != nil {
			log.Warn().Err(err).Int("nodes", len(nodes)).Msg("Failed to cache topology")
		}
	}
	return nodes, nil
}

func (c *GatewayController) CachedTopology(ctx context.Context) ([]topology.NodeInfo, error) {
	if c.store == nil {
		return []topology.NodeInfo{}, nil
	}
	nodes, err := c.store.ListNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cached topology: %w", err)
	}
	if nodes == nil {
		nodes = []topology.NodeInfo{}
	}
	return nodes, nil
}

func (c *GatewayController) FindDevices(ctx context.Context, intent command.Intent) ([]topology.NodeInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var matched []topology.NodeInfo
	err := c.withTopology(ctx, func(nodes []topology.NodeInfo) error {
		var err error
		matched, err = command.Resolve(intent, nodes)
		return err
	})
	return matched, err
}

func (c *GatewayController) Execute(ctx context.Context, intent command.Intent) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := intent.Validate(c.validator); err != nil {
		progress.Reportf(c.reporter, progress.LevelError, "指令格式错误: %v", err)
		return nil, err
	}
	progress.Reportf(c.reporter, progress.LevelInfo, "收到指令: %s %s %s", intent.Domain, intent.Action, intent.Name)

	if !c.manager.IsConnected() {
		c.reporter.Report(progress.LevelError, "网关未连接")
		return nil, gateway.ErrNotConnected
	}

	var cmd *command.ControlCommand
	err := c.withTopology(ctx, func(nodes []topology.NodeInfo) error {
		var err error
		cmd, err = command.Build(intent, nodes)
		return err
	})
	if err != nil {
		progress.Reportf(c.reporter, progress.LevelError, "构建控制命令失败: %v", err)
		return nil, err
	}

	if payload, err := json.Marshal(cmd); err == nil {
		progress.Reportf(c.reporter, progress.LevelInfo, "构建控制命令: %s", payload)
	}

	reply, err := c.manager.Call(ctx, cmd)
	if err != nil {
		progress.Reportf(c.reporter, progress.LevelError, "发送控制命令失败: %v", err)
		return nil, err
	}

	result := &Result{
		Message: Describe(intent, cmd.Targets),
		Command: cmd,
		Targets: cmd.Targets,
		Reply:   reply,
	}
	progress.Reportf(c.reporter, progress.LevelInfo, "命令已发送: %s", result.Message)

	log.Info().
		Str("domain", intent.Domain).
		Str("name", intent.Name).
		Str("action", intent.Action).
		Int("nodes", len(cmd.Nodes)).
		Int("scenes", len(cmd.Scenes)).
		Msg("Intent executed")

	return result, nil
}

// withTopology runs fn against the cached topology when preferred and
// available, falling back to a fresh fetch when the cache is empty or fn
// reports no matching device. Callers hold c.mu.
func (c *GatewayController) withTopology(ctx context.Context, fn func([]topology.NodeInfo) error) error {
	if c.preferCache && c.store != nil {
		cached, err := c.store.ListNodes(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to read cached topology")
		}
		if len(cached) > 0 {
			err := fn(cached)
			if !errors.Is(err, command.ErrDeviceNotFound) {
				return err
			}
			log.Debug().Msg("No match in cached topology, refreshing")
		}
	}

	nodes, err := c.refresh(ctx)
	if err != nil {
		return err
	}
	return fn(nodes)
}

func (c *GatewayController) IsConnected() bool {
	return c.manager.IsConnected()
}

func (c *GatewayController) Close() {
	if err := c.manager.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close gateway session")
	}
	c.statusMu.Lock()
	c.info = nil
	c.statusMu.Unlock()
}
