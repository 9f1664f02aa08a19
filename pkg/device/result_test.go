package device

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/urmzd/yeehome/pkg/command"
	"github.com/urmzd/yeehome/pkg/topology"
)

func TestDescribe(t *testing.T) {
	lamp := topology.NodeInfo{ID: 1, Type: topology.NodeTypeMeshSubdevice, Name: "客厅灯带"}
	group := topology.NodeInfo{ID: 2, Type: topology.NodeTypeMeshGroup, Name: "全部灯"}
	scene := topology.NodeInfo{ID: 3, Type: topology.NodeTypeScene, Name: "回家模式"}

	tests := []struct {
		name    string
		intent  command.Intent
		targets []topology.NodeInfo
		want    string
	}{
		{
			name:    "turn on",
			intent:  command.Intent{Action: command.ActionTurnOn},
			targets: []topology.NodeInfo{lamp, group},
			want:    "已打开：客厅灯带、全部灯",
		},
		{
			name:    "turn off",
			intent:  command.Intent{Action: command.ActionTurnOff},
			targets: []topology.NodeInfo{lamp},
			want:    "已关闭：客厅灯带",
		},
		{
			name:    "scene",
			intent:  command.Intent{Action: "execute"},
			targets: []topology.NodeInfo{scene},
			want:    "已执行情景：回家模式",
		},
		{
			name:    "parameters sorted",
			intent:  command.Intent{Action: "set", Parameters: map[string]any{"l": 30, "ct": 4000}},
			targets: []topology.NodeInfo{lamp},
			want:    "已执行 set(ct=4000, l=30)：客厅灯带",
		},
		{
			name:    "bare action",
			intent:  command.Intent{Action: "toggle"},
			targets: []topology.NodeInfo{lamp, scene},
			want:    "已执行 toggle：客厅灯带；已执行情景：回家模式",
		},
		{
			name:   "nothing",
			intent: command.Intent{Action: command.ActionTurnOn},
			want:   "未找到可控制的设备",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.intent, tt.targets))
		})
	}
}

func TestFormatFields(t *testing.T) {
	got := formatFields(map[string]string{"model": "gateway", "ip": "192.168.1.5"})
	assert.Equal(t, "ip: 192.168.1.5, model: gateway", got)
}
