package device

import (
	"fmt"
	"sort"
	"strings"

	"github.com/urmzd/yeehome/pkg/command"
	"github.com/urmzd/yeehome/pkg/topology"
)

// Describe renders the human-readable outcome of an executed intent.
func Describe(intent command.Intent, targets []topology.NodeInfo) string {
	var scenes, nodes []string
	for _, n := range targets {
		if n.Type == topology.NodeTypeScene {
			scenes = append(scenes, n.Name)
		} else {
			nodes = append(nodes, n.Name)
		}
	}

	var parts []string
	if len(nodes) > 0 {
		parts = append(parts, actionVerb(intent)+"："+strings.Join(nodes, "、"))
	}
	if len(scenes) > 0 {
		parts = append(parts, "已执行情景："+strings.Join(scenes, "、"))
	}
	if len(parts) == 0 {
		return "未找到可控制的设备"
	}
	return strings.Join(parts, "；")
}

func actionVerb(intent command.Intent) string {
	switch intent.Action {
	case command.ActionTurnOn:
		return "已打开"
	case command.ActionTurnOff:
		return "已关闭"
	}
	if len(intent.Parameters) == 0 {
		return fmt.Sprintf("已执行 %s", intent.Action)
	}
	keys := make([]string, 0, len(intent.Parameters))
	for k := range intent.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	params := make([]string, 0, len(keys))
	for _, k := range keys {
		params = append(params, fmt.Sprintf("%s=%v", k, intent.Parameters[k]))
	}
	return fmt.Sprintf("已执行 %s(%s)", intent.Action, strings.Join(params, ", "))
}

func formatFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return strings.Join(parts, ", ")
}
