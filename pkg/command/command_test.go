package command

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urmzd/yeehome/pkg/gateway"
	"github.com/urmzd/yeehome/pkg/topology"
)

func node(id int64, nt topology.NodeType, name string, dt topology.DeviceType) topology.NodeInfo {
	return topology.NodeInfo{ID: id, Type: nt, TypeDescription: nt.Description(), Name: name, DeviceType: dt}
}

func sampleTopology() []topology.NodeInfo {
	return []topology.NodeInfo{
		node(1, topology.NodeTypeMeshSubdevice, "客厅灯带", topology.DeviceTypeLightSwitch),
		node(2, topology.NodeTypeMeshSubdevice, "客厅射灯1", topology.DeviceTypeDimmableLight),
		node(3, topology.NodeTypeCustomGroup, "射灯2", topology.DeviceTypeColorTemperatureLight),
		node(4, topology.NodeTypeMeshSubdevice, "客厅开关", topology.DeviceTypeSwitchController),
		node(5, topology.NodeTypeMeshSubdevice, "主卧窗帘", topology.DeviceTypeCurtainMotor),
		node(6, topology.NodeTypeMeshSubdevice, "走廊灯", topology.DeviceTypeHumanSensor),
		node(1005, topology.NodeTypeScene, "睡前模式", topology.DeviceTypeNone),
		node(20, topology.NodeTypeHouse, "我的家", topology.DeviceTypeNone),
		node(21, topology.NodeTypeRoom, "客厅", topology.DeviceTypeNone),
	}
}

func TestBuild_SceneRoundTrip(t *testing.T) {
	cmd, err := Build(Intent{Domain: DomainScene, Name: "睡前模式", Action: "excute"}, sampleTopology())
	require.NoError(t, err)

	assert.Equal(t, []SceneCommand{{ID: 1005}}, cmd.Scenes)
	assert.Empty(t, cmd.Nodes)
	assert.Equal(t, gateway.MethodSetProp, cmd.Method)
}

func TestBuild_EndToEndLight(t *testing.T) {
	intent := Intent{Domain: DomainLight, Name: "客厅灯带", Action: ActionTurnOn, Location: "客厅"}

	cmd, err := Build(intent, sampleTopology())
	require.NoError(t, err)

	b, err := json.Marshal(cmd)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(b, &wire))
	assert.Equal(t, "gateway_set.prop", wire["method"])
	assert.Equal(t, []any{
		map[string]any{"id": float64(1), "nt": float64(2), "set": map[string]any{"p": true}},
	}, wire["nodes"])
	assert.Equal(t, []any{}, wire["scenes"])
	assert.NotContains(t, wire, "Targets")
}

func TestBuild_PowerAndParameters(t *testing.T) {
	nodes := sampleTopology()

	on, err := Build(Intent{Domain: DomainLight, Name: "客厅灯带", Action: ActionTurnOn}, nodes)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"p": true}, on.Nodes[0].Set)

	off, err := Build(Intent{Domain: DomainLight, Name: "客厅灯带", Action: ActionTurnOff}, nodes)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"p": false}, off.Nodes[0].Set)

	dim, err := Build(Intent{
		Domain:     DomainLight,
		Name:       "客厅灯带",
		Action:     ActionTurnOn,
		Parameters: map[string]any{"brightness": 80},
	}, nodes)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"p": true, "brightness": 80}, dim.Nodes[0].Set)
}

func TestBuild_ParametersOverridePower(t *testing.T) {
	cmd, err := Build(Intent{
		Domain:     DomainLight,
		Name:       "客厅灯带",
		Action:     ActionTurnOn,
		Parameters: map[string]any{"p": false},
	}, sampleTopology())
	require.NoError(t, err)
	assert.Equal(t, false, cmd.Nodes[0].Set["p"])
}

func TestBuild_OtherActionLeavesPowerUnset(t *testing.T) {
	cmd, err := Build(Intent{
		Domain:     DomainLight,
		Name:       "客厅灯带",
		Action:     "dim",
		Parameters: map[string]any{"l": 10},
	}, sampleTopology())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"l": 10}, cmd.Nodes[0].Set)
}

func TestBuild_Deterministic(t *testing.T) {
	intent := Intent{Domain: DomainLight, Name: "射灯", Action: ActionTurnOff, Parameters: map[string]any{"l": 5}}
	nodes := sampleTopology()

	a, err := Build(intent, nodes)
	require.NoError(t, err)
	b, err := Build(intent, nodes)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	a.ID, b.ID = 0, 0
	assert.Equal(t, a, b)
}

func TestBuild_MultipleMatchesKeepOrder(t *testing.T) {
	cmd, err := Build(Intent{Domain: DomainLight, Name: "射灯", Action: ActionTurnOn}, sampleTopology())
	require.NoError(t, err)

	require.Len(t, cmd.Nodes, 2)
	assert.Equal(t, int64(2), cmd.Nodes[0].ID)
	assert.Equal(t, int64(3), cmd.Nodes[1].ID)
	assert.Equal(t, topology.NodeTypeCustomGroup, cmd.Nodes[1].NodeType)
	assert.Len(t, cmd.Targets, 2)
}

func TestBuild_DomainPredicates(t *testing.T) {
	nodes := sampleTopology()

	tests := []struct {
		name   string
		intent Intent
		wantID int64
	}{
		{"switch", Intent{Domain: DomainSwitch, Name: "客厅开关", Action: ActionTurnOn}, 4},
		{"curtain", Intent{Domain: DomainCurtain, Name: "窗帘", Action: ActionTurnOff}, 5},
		{"room all", Intent{Domain: DomainRoom, Name: "客厅", Action: ActionTurnOff, Location: LocationAll}, 21},
		{"room house", Intent{Domain: DomainRoom, Name: "我的家", Action: ActionTurnOff, Location: "客厅"}, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Build(tt.intent, nodes)
			require.NoError(t, err)
			require.Len(t, cmd.Nodes, 1)
			assert.Equal(t, tt.wantID, cmd.Nodes[0].ID)
		})
	}
}

func TestBuild_LightIgnoresNonLightDevices(t *testing.T) {
	_, err := Build(Intent{Domain: DomainLight, Name: "走廊灯", Action: ActionTurnOn}, sampleTopology())
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	_, err = Build(Intent{Domain: DomainLight, Name: "客厅开关", Action: ActionTurnOn}, sampleTopology())
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(Intent{Domain: "fan", Name: "风扇", Action: ActionTurnOn}, sampleTopology())
	assert.ErrorIs(t, err, ErrUnknownDomain)

	_, err = Build(Intent{Domain: DomainLight, Name: "车库灯", Action: ActionTurnOn}, sampleTopology())
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	_, err = Build(Intent{Domain: DomainScene, Name: "睡前模式", Action: "excute"}, nil)
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestControlCommand_IsRequest(t *testing.T) {
	var req gateway.Request = ControlCommand{ID: 9, Method: gateway.MethodSetProp}
	assert.Equal(t, int64(9), req.RequestID())
	assert.Equal(t, gateway.MethodSetProp, req.RequestMethod())
}
