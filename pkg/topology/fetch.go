package topology

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/yeehome/pkg/gateway"
)

// Caller issues one correlated request. *gateway.Conn and *gateway.Manager
// both satisfy it.
type Caller interface {
	Call(ctx context.Context, req gateway.Request) (gateway.Response, error)
}

// WrapNode converts a wire node into a NodeInfo.
func WrapNode(raw RawNode) NodeInfo {
	nt := NodeTypeFromCode(int(raw.NodeType))
	dt := DeviceTypeNone
	if raw.DeviceCode != nil {
		dt = DeviceTypeFromCode(int(*raw.DeviceCode))
	}
	return NodeInfo{
		ID:              int64(raw.ID),
		Type:            nt,
		TypeDescription: nt.Description(),
		Name:            raw.Name,
		DeviceType:      dt,
	}
}

// WrapRoom converts a wire room into a NodeInfo of type Room.
func WrapRoom(raw RawNode) NodeInfo {
	return NodeInfo{
		ID:              int64(raw.ID),
		Type:            NodeTypeRoom,
		TypeDescription: NodeTypeRoom.Description(),
		Name:            raw.Name,
	}
}

// FetchDevices issues gateway_get.topology and wraps its nodes.
func FetchDevices(ctx context.Context, c Caller) ([]NodeInfo, error) {
	resp, err := c.Call(ctx, gateway.NewQuery(gateway.MethodGetTopology, nil))
	if err != nil {
		return nil, fmt.Errorf("fetch topology: %w", err)
	}

	var raw []RawNode
	if err := resp.Decode("nodes", &raw); err != nil {
		return nil, fmt.Errorf("fetch topology: %w", err)
	}

	nodes := make([]NodeInfo, 0, len(raw))
	for _, r := range raw {
		nodes = append(nodes, WrapNode(r))
	}
	return nodes, nil
}

// FetchRooms issues gateway_get.room and wraps its rooms.
func FetchRooms(ctx context.Context, c Caller) ([]NodeInfo, error) {
	resp, err := c.Call(ctx, gateway.NewQuery(gateway.MethodGetRoom, map[string]any{"id": 0}))
	if err != nil {
		return nil, fmt.Errorf("fetch rooms: %w", err)
	}

	var raw []RawNode
	if err := resp.Decode("rooms", &raw); err != nil {
		return nil, fmt.Errorf("fetch rooms: %w", err)
	}

	rooms := make([]NodeInfo, 0, len(raw))
	for _, r := range raw {
		rooms = append(rooms, WrapRoom(r))
	}
	return rooms, nil
}

// Fetch returns devices, groups and scenes followed by rooms. A room failure
// after a successful topology fetch yields the device-only list.
func Fetch(ctx context.Context, c Caller) ([]NodeInfo, error) {
	nodes, err := FetchDevices(ctx, c)
	if err != nil {
		return nil, err
	}

	rooms, err := FetchRooms(ctx, c)
	if err != nil {
		log.Warn().Err(err).Int("nodes", len(nodes)).Msg("Room list unavailable, returning device topology only")
		return nodes, nil
	}

	log.Debug().Int("nodes", len(nodes)).Int("rooms", len(rooms)).Msg("Topology fetched")
	return append(nodes, rooms...), nil
}

// Describe renders nodes grouped by type description, groups in order of
// first appearance.
func Describe(nodes []NodeInfo) string {
	var order []string
	groups := make(map[string][]string)
	for _, n := range nodes {
		desc := n.TypeDescription
		if desc == "" {
			desc = n.Type.Description()
		}
		if _, ok := groups[desc]; !ok {
			order = append(order, desc)
		}
		groups[desc] = append(groups[desc], n.Name)
	}

	var lines []string
	for _, desc := range order {
		lines = append(lines, fmt.Sprintf(" '%s'数据包含:", desc))
		for _, name := range groups[desc] {
			lines = append(lines, "- "+name)
		}
	}
	return strings.Join(lines, "\n")
}
