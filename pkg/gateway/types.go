package gateway

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"
	"time"
)

// Wire constants
const (
	DiscoveryPort  = 1982
	ControlPort    = 65443
	DiscoveryToken = "YEELIGHT_GATEWAY_CONTROL_DISCOVER"

	MethodGetTopology  = "gateway_get.topology"
	MethodGetRoom      = "gateway_get.room"
	MethodSetProp      = "gateway_set.prop"
	MethodPostProp     = "gateway_post.prop"
	MethodPostTopology = "gateway_post.topology"
)

// Address is the TCP control endpoint of a gateway.
type Address struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// NewAddress returns the control address for a gateway host.
func NewAddress(host string) Address {
	return Address{Host: host, Port: ControlPort}
}

func (a Address) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Request is a single JSON object sent to the gateway. The id doubles as the
// correlation token for the reply.
type Request interface {
	RequestID() int64
	RequestMethod() string
}

// Query is a read request such as gateway_get.topology.
type Query struct {
	ID     int64          `json:"id"`
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
}

// NewQuery builds a query with a fresh request id.
func NewQuery(method string, params map[string]any) Query {
	return Query{ID: NextID(), Method: method, Params: params}
}

func (q Query) RequestID() int64      { return q.ID }
func (q Query) RequestMethod() string { return q.Method }

// Response is one JSON object received from the gateway.
type Response map[string]any

// Method returns the "method" field, or "" when absent.
func (r Response) Method() string {
	s, _ := r["method"].(string)
	return s
}

// ID returns the numeric "id" field.
func (r Response) ID() (int64, bool) {
	return toInt64(r["id"])
}

// Has reports whether the key is present.
func (r Response) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Decode re-decodes the value stored under key into v. A missing key leaves v untouched.
func (r Response) Decode(key string, v any) error {
	raw, ok := r[key]
	if !ok || raw == nil {
		return nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: field %q: %w", ErrProtocolDecode, key, err)
	}
	return nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return int64(f), f == float64(int64(f))
	case float64:
		return int64(n), n == float64(int64(n))
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

var lastID atomic.Int64

// NextID returns a time-derived request id (unix seconds). Ids are strictly
// increasing within the process so two requests issued in the same second
// never share a correlation token.
func NextID() int64 {
	for {
		last := lastID.Load()
		id := time.Now().Unix()
		if id <= last {
			id = last + 1
		}
		if lastID.CompareAndSwap(last, id) {
			return id
		}
	}
}
