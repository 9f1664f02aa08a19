package topology

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NodeType classifies a topology node (nt on the wire).
type NodeType int

const (
	NodeTypeUnknown       NodeType = 0
	NodeTypeRoom          NodeType = 1
	NodeTypeMeshSubdevice NodeType = 2
	NodeTypeCustomGroup   NodeType = 3
	NodeTypeMeshGroup     NodeType = 4
	NodeTypeHouse         NodeType = 5
	NodeTypeScene         NodeType = 6
)

var nodeTypeDescriptions = map[NodeType]string{
	NodeTypeRoom:          "房间",
	NodeTypeMeshSubdevice: "Mesh子设备",
	NodeTypeCustomGroup:   "自定义分组",
	NodeTypeMeshGroup:     "Mesh组",
	NodeTypeHouse:         "全屋",
	NodeTypeScene:         "情景",
}

// NodeTypeFromCode maps a wire code to a NodeType. Unlisted codes map to
// NodeTypeUnknown.
func NodeTypeFromCode(code int) NodeType {
	nt := NodeType(code)
	if _, ok := nodeTypeDescriptions[nt]; ok {
		return nt
	}
	return NodeTypeUnknown
}

// Description returns the human label for the node type.
func (t NodeType) Description() string {
	if d, ok := nodeTypeDescriptions[t]; ok {
		return d
	}
	return "未知类型"
}

func (t NodeType) String() string {
	switch t {
	case NodeTypeRoom:
		return "ROOM"
	case NodeTypeMeshSubdevice:
		return "MESH_SUBDEVICE"
	case NodeTypeCustomGroup:
		return "CUSTOM_GROUP"
	case NodeTypeMeshGroup:
		return "MESH_GROUP"
	case NodeTypeHouse:
		return "HOUSE"
	case NodeTypeScene:
		return "SCENE"
	default:
		return "UNKNOWN"
	}
}

// IsDevice reports whether the node addresses a device or a group of devices.
func (t NodeType) IsDevice() bool {
	return t == NodeTypeMeshSubdevice || t == NodeTypeCustomGroup || t == NodeTypeMeshGroup
}

// DeviceType is the hardware class of a device node.
type DeviceType int

const (
	// DeviceTypeNone marks nodes that carry no device-type code (rooms, scenes).
	DeviceTypeNone DeviceType = 0
	// DeviceTypeUnknown marks a device-type code outside the known table.
	DeviceTypeUnknown DeviceType = -1

	DeviceTypeLightSwitch               DeviceType = 1
	DeviceTypeDimmableLight             DeviceType = 2
	DeviceTypeColorTemperatureLight     DeviceType = 3
	DeviceTypeColorLight                DeviceType = 4
	DeviceTypeCurtainMotor              DeviceType = 6
	DeviceTypeSwitchController          DeviceType = 7
	DeviceTypeACGateway                 DeviceType = 10
	DeviceTypeMultiSwitchPanel          DeviceType = 13
	DeviceTypeDigitalFocusLight         DeviceType = 14
	DeviceTypeACController              DeviceType = 15
	DeviceTypeControlPanel              DeviceType = 128
	DeviceTypeHumanSensor               DeviceType = 129
	DeviceTypeDoorMagnetic              DeviceType = 130
	DeviceTypeKnob                      DeviceType = 132
	DeviceTypeHumanLightSensor          DeviceType = 134
	DeviceTypeBrightnessSensor          DeviceType = 135
	DeviceTypeTemperatureHumiditySensor DeviceType = 136
	DeviceTypeMiraiHumanSensor          DeviceType = 138
)

type deviceTypeMeta struct {
	name        string
	description string
}

var deviceTypes = map[DeviceType]deviceTypeMeta{
	DeviceTypeLightSwitch:               {"LIGHT_SWITCH", "可开关灯具"},
	DeviceTypeDimmableLight:             {"DIMMABLE_LIGHT", "亮度可调灯具"},
	DeviceTypeColorTemperatureLight:     {"COLOR_TEMPERATURE_LIGHT", "色温可调灯具"},
	DeviceTypeColorLight:                {"COLOR_LIGHT", "色彩可调灯具"},
	DeviceTypeCurtainMotor:              {"CURTAIN_MOTOR", "窗帘电机"},
	DeviceTypeSwitchController:          {"SWITCH_CONTROLLER", "双路开关控制器"},
	DeviceTypeACGateway:                 {"AC_GATEWAY", "空调网关"},
	DeviceTypeMultiSwitchPanel:          {"MULTI_SWITCH_PANEL", "多路开关面板"},
	DeviceTypeDigitalFocusLight:         {"DIGITAL_FOCUS_LIGHT", "数字调焦色温灯"},
	DeviceTypeACController:              {"AC_CONTROLLER", "空调控制器"},
	DeviceTypeControlPanel:              {"CONTROL_PANEL", "控制面板"},
	DeviceTypeHumanSensor:               {"HUMAN_SENSOR", "人体传感器"},
	DeviceTypeDoorMagnetic:              {"DOOR_MAGNETIC", "门磁"},
	DeviceTypeKnob:                      {"KNOB", "旋钮"},
	DeviceTypeHumanLightSensor:          {"HUMAN_LIGHT_SENSOR", "人体光感传感器"},
	DeviceTypeBrightnessSensor:          {"BRIGHTNESS_SENSOR", "亮度传感器"},
	DeviceTypeTemperatureHumiditySensor: {"TEMPERATURE_HUMIDITY_SENSOR", "温湿度传感器"},
	DeviceTypeMiraiHumanSensor:          {"MIRAI_HUMAN_SENSOR", "迈睿人体传感器"},
}

var deviceTypesByName = func() map[string]DeviceType {
	m := make(map[string]DeviceType, len(deviceTypes))
	for dt, meta := range deviceTypes {
		m[meta.name] = dt
	}
	return m
}()

// DeviceTypeFromCode maps a wire code to a DeviceType. Unlisted codes map to
// DeviceTypeUnknown rather than failing.
func DeviceTypeFromCode(code int) DeviceType {
	dt := DeviceType(code)
	if _, ok := deviceTypes[dt]; ok {
		return dt
	}
	return DeviceTypeUnknown
}

// ParseDeviceType accepts a symbolic name or a numeric code. The empty string
// is DeviceTypeNone.
func ParseDeviceType(s string) DeviceType {
	s = strings.TrimSpace(s)
	if s == "" {
		return DeviceTypeNone
	}
	if dt, ok := deviceTypesByName[strings.ToUpper(s)]; ok {
		return dt
	}
	if code, err := strconv.Atoi(s); err == nil {
		return DeviceTypeFromCode(code)
	}
	return DeviceTypeUnknown
}

// String returns the symbolic name, "" for DeviceTypeNone.
func (d DeviceType) String() string {
	if meta, ok := deviceTypes[d]; ok {
		return meta.name
	}
	if d == DeviceTypeNone {
		return ""
	}
	return "UNKNOWN"
}

// Description returns the human label.
func (d DeviceType) Description() string {
	if meta, ok := deviceTypes[d]; ok {
		return meta.description
	}
	if d == DeviceTypeNone {
		return ""
	}
	return "未知设备类型"
}

func (d DeviceType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DeviceType) UnmarshalText(text []byte) error {
	*d = ParseDeviceType(string(text))
	return nil
}

// NodeInfo is one addressable node of the gateway topology.
type NodeInfo struct {
	ID              int64      `json:"id"`
	Type            NodeType   `json:"type"`
	TypeDescription string     `json:"type_description"`
	Name            string     `json:"name"`
	DeviceType      DeviceType `json:"device_type"`
}

// flexInt decodes a JSON number or a numeric string.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var n json.Number
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n = json.Number(strings.TrimSpace(s))
	} else {
		n = json.Number(b)
	}
	if i, err := n.Int64(); err == nil {
		*f = flexInt(i)
		return nil
	}
	fl, err := n.Float64()
	if err != nil {
		return fmt.Errorf("invalid integer %s", b)
	}
	*f = flexInt(fl)
	return nil
}

// RawNode is a node as reported by gateway_get.topology or gateway_get.room.
type RawNode struct {
	ID         flexInt  `json:"id"`
	NodeType   flexInt  `json:"nt"`
	Name       string   `json:"n"`
	DeviceCode *flexInt `json:"type"`
}
