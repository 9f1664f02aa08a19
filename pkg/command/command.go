// Package command turns intents into gateway_set.prop control commands.
package command

import (
	"fmt"
	"maps"
	"slices"

	"github.com/urmzd/yeehome/pkg/gateway"
	"github.com/urmzd/yeehome/pkg/match"
	"github.com/urmzd/yeehome/pkg/topology"
)

// NodeCommand sets properties on a device or group node.
type NodeCommand struct {
	ID       int64             `json:"id"`
	NodeType topology.NodeType `json:"nt"`
	Set      map[string]any    `json:"set"`
}

// SceneCommand triggers a scene.
type SceneCommand struct {
	ID int64 `json:"id"`
}

// ControlCommand is a gateway_set.prop request. Nodes and Scenes are always
// present on the wire, empty or not.
type ControlCommand struct {
	ID     int64          `json:"id"`
	Method string         `json:"method"`
	Nodes  []NodeCommand  `json:"nodes"`
	Scenes []SceneCommand `json:"scenes"`

	// Targets are the matched nodes, in topology order.
	Targets []topology.NodeInfo `json:"-"`
}

func (c ControlCommand) RequestID() int64      { return c.ID }
func (c ControlCommand) RequestMethod() string { return c.Method }

var (
	lightDeviceTypes = []topology.DeviceType{
		topology.DeviceTypeLightSwitch,
		topology.DeviceTypeDimmableLight,
		topology.DeviceTypeColorTemperatureLight,
		topology.DeviceTypeColorLight,
	}
	switchDeviceTypes = []topology.DeviceType{
		topology.DeviceTypeSwitchController,
		topology.DeviceTypeMultiSwitchPanel,
	}
)

type predicate func(topology.NodeInfo) bool

func domainPredicate(intent Intent) (predicate, error) {
	switch intent.Domain {
	case DomainLight:
		return func(n topology.NodeInfo) bool {
			return slices.Contains(lightDeviceTypes, n.DeviceType) && n.Type.IsDevice()
		}, nil
	case DomainSwitch:
		return func(n topology.NodeInfo) bool {
			return slices.Contains(switchDeviceTypes, n.DeviceType)
		}, nil
	case DomainCurtain:
		return func(n topology.NodeInfo) bool {
			return n.DeviceType == topology.DeviceTypeCurtainMotor && n.Type.IsDevice()
		}, nil
	case DomainScene:
		return func(n topology.NodeInfo) bool {
			return n.Type == topology.NodeTypeScene
		}, nil
	case DomainRoom:
		want := topology.NodeTypeHouse
		if intent.Location == LocationAll {
			want = topology.NodeTypeRoom
		}
		return func(n topology.NodeInfo) bool {
			return n.Type == want
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, intent.Domain)
	}
}

// Candidates filters nodes down to those the intent's domain can address.
func Candidates(intent Intent, nodes []topology.NodeInfo) ([]topology.NodeInfo, error) {
	keep, err := domainPredicate(intent)
	if err != nil {
		return nil, err
	}
	var out []topology.NodeInfo
	for _, n := range nodes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

// Resolve returns the domain candidates whose name matches the intent.
func Resolve(intent Intent, nodes []topology.NodeInfo) ([]topology.NodeInfo, error) {
	candidates, err := Candidates(intent, nodes)
	if err != nil {
		return nil, err
	}
	matched := match.FindByName(candidates, intent.Name)
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: %s %q", ErrDeviceNotFound, intent.Domain, intent.Name)
	}
	return matched, nil
}

// Build resolves the intent against a topology snapshot and returns the
// control command for every matched node.
func Build(intent Intent, nodes []topology.NodeInfo) (*ControlCommand, error) {
	matched, err := Resolve(intent, nodes)
	if err != nil {
		return nil, err
	}

	cmd := &ControlCommand{
		ID:      gateway.NextID(),
		Method:  gateway.MethodSetProp,
		Nodes:   []NodeCommand{},
		Scenes:  []SceneCommand{},
		Targets: matched,
	}
	for _, n := range matched {
		if n.Type == topology.NodeTypeScene {
			cmd.Scenes = append(cmd.Scenes, SceneCommand{ID: n.ID})
			continue
		}
		cmd.Nodes = append(cmd.Nodes, NodeCommand{
			ID:       n.ID,
			NodeType: n.Type,
			Set:      properties(intent),
		})
	}
	return cmd, nil
}

func properties(intent Intent) map[string]any {
	set := make(map[string]any, len(intent.Parameters)+1)
	switch intent.Action {
	case ActionTurnOn:
		set["p"] = true
	case ActionTurnOff:
		set["p"] = false
	}
	maps.Copy(set, intent.Parameters)
	return set
}
