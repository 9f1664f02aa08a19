package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_String(t *testing.T) {
	ev := Event{
		Level:   LevelInfo,
		Message: "成功连接到网关: 10.0.0.5:65443",
		Time:    time.Date(2024, 5, 1, 8, 30, 0, 0, time.Local),
	}
	assert.Equal(t, "[INFO] [2024-05-01 08:30:00] 成功连接到网关: 10.0.0.5:65443", ev.String())
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Report(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Level: level, Message: msg})
}

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := Multi{a, nil, b, Nop{}}

	Reportf(m, LevelError, "连接网关失败: %s", "timeout")

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.Equal(t, "连接网关失败: timeout", a.events[0].Message)
	assert.Equal(t, LevelError, b.events[0].Level)
}

func TestHub_Broadcast(t *testing.T) {
	h := NewHub(10)
	ch1 := h.Subscribe()
	ch2 := h.Subscribe()

	h.Report(LevelInfo, "扫描发现附近网关")

	for _, ch := range []chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, "扫描发现附近网关", ev.Message)
			assert.False(t, ev.Time.IsZero())
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}

	h.Unsubscribe(ch1)
	_, open := <-ch1
	assert.False(t, open, "unsubscribed channel should be closed")
	h.Unsubscribe(ch1)

	h.Report(LevelInfo, "second")
	assert.Equal(t, "second", (<-ch2).Message)
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub(1)
	_ = h.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			h.Report(LevelInfo, "tick")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Report blocked on a full subscriber")
	}
}

func TestHub_Recent(t *testing.T) {
	h := NewHub(3)
	for _, msg := range []string{"a", "b", "c", "d"} {
		h.Report(LevelInfo, msg)
	}

	recent := h.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "b", recent[0].Message)
	assert.Equal(t, "d", recent[2].Message)

	last := h.Recent(1)
	require.Len(t, last, 1)
	assert.Equal(t, "d", last[0].Message)
}

func TestHub_SubscribeWithHistoryNoDuplicates(t *testing.T) {
	const total = 50
	h := NewHub(total * 2)

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		for i := 0; i < total; i++ {
			if i == total/2 {
				close(started)
			}
			h.Report(LevelInfo, fmt.Sprintf("event-%d", i))
		}
		close(done)
	}()

	<-started
	history, ch := h.SubscribeWithHistory(total * 2)
	<-done

	seen := make(map[string]int)
	for _, ev := range history {
		seen[ev.Message]++
	}
drain:
	for {
		select {
		case ev := <-ch:
			seen[ev.Message]++
		default:
			break drain
		}
	}

	require.Len(t, seen, total)
	for msg, n := range seen {
		assert.Equal(t, 1, n, "event %s delivered %d times", msg, n)
	}
}

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type fakePublisher struct {
	mu           sync.Mutex
	topics       []string
	qos          []byte
	payloads     [][]byte
	disconnected bool
}

func (f *fakePublisher) Publish(topic string, qos byte, _ bool, payload any) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.qos = append(f.qos, qos)
	f.payloads = append(f.payloads, payload.([]byte))
	return doneToken{}
}

func (f *fakePublisher) Disconnect(uint) {
	f.mu.Lock()
	f.disconnected = true
	f.mu.Unlock()
}

func TestMQTTReporter_PublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	r := newMQTTReporter(pub, "yeehome/progress", 1)

	r.Report(LevelWarn, "接收响应超时")
	r.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.payloads, 1)
	assert.Equal(t, "yeehome/progress", pub.topics[0])
	assert.Equal(t, byte(1), pub.qos[0])
	assert.True(t, pub.disconnected)

	var ev Event
	require.NoError(t, json.Unmarshal(pub.payloads[0], &ev))
	assert.Equal(t, LevelWarn, ev.Level)
	assert.Equal(t, "接收响应超时", ev.Message)
}

func TestMQTTReporter_ClampsQoS(t *testing.T) {
	r := newMQTTReporter(&fakePublisher{}, "t", 7)
	assert.Equal(t, byte(2), r.qos)
}

type pendingToken struct{ doneToken }

func (pendingToken) WaitTimeout(time.Duration) bool { return false }

type fakeBroker struct {
	fakePublisher
	connect mqtt.Token
}

func (f *fakeBroker) Connect() mqtt.Token { return f.connect }

func TestConnectMQTTReporter(t *testing.T) {
	tests := []struct {
		name    string
		token   mqtt.Token
		wantErr bool
	}{
		{"connected", doneToken{}, false},
		{"timeout", pendingToken{}, true},
		{"refused", doneToken{err: errors.New("not authorized")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broker := &fakeBroker{connect: tt.token}
			r, err := connectMQTTReporter(broker, "yeehome/progress", 0, 10*time.Millisecond)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMQTTConnect)
				assert.Nil(t, r)
				assert.True(t, broker.disconnected, "failed client should be disconnected")
				return
			}
			require.NoError(t, err)
			require.NotNil(t, r)
			assert.False(t, broker.disconnected)
		})
	}
}
