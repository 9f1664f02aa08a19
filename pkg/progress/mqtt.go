package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 5 * time.Second
	mqttQuiesceMillis  = 250
)

// ErrMQTTConnect indicates the broker could not be reached.
var ErrMQTTConnect = errors.New("mqtt connection failed")

// MQTTOptions configures the MQTT progress sink.
type MQTTOptions struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// publisher is the part of mqtt.Client the reporter uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
	Disconnect(quiesce uint)
}

// brokerClient adds the connect step to publisher.
type brokerClient interface {
	publisher
	Connect() mqtt.Token
}

// MQTTReporter publishes each event as JSON to a topic.
type MQTTReporter struct {
	client publisher
	topic  string
	qos    byte
}

// NewMQTTReporter connects to the broker and returns a reporter.
func NewMQTTReporter(opts MQTTOptions) (*MQTTReporter, error) {
	if opts.Topic == "" {
		return nil, fmt.Errorf("%w: empty topic", ErrMQTTConnect)
	}

	co := mqtt.NewClientOptions()
	co.AddBroker(opts.Broker)
	clientID := opts.ClientID
	if clientID == "" {
		clientID = "yeehome-" + time.Now().Format("150405.000")
	}
	co.SetClientID(clientID)
	if opts.Username != "" {
		co.SetUsername(opts.Username)
		co.SetPassword(opts.Password)
	}
	co.SetCleanSession(true)
	co.SetAutoReconnect(true)
	co.SetConnectTimeout(mqttConnectTimeout)
	co.SetOnConnectHandler(func(mqtt.Client) {
		log.Info().Str("broker", opts.Broker).Msg("MQTT progress sink connected")
	})
	co.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", opts.Broker).Msg("MQTT progress sink connection lost")
	})

	return connectMQTTReporter(mqtt.NewClient(co), opts.Topic, opts.QoS, mqttConnectTimeout)
}

// connectMQTTReporter waits for the first connection. On failure the client
// is disconnected so its reconnect loop stops.
func connectMQTTReporter(client brokerClient, topic string, qos byte, timeout time.Duration) (*MQTTReporter, error) {
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		client.Disconnect(0)
		return nil, fmt.Errorf("%w: timeout after %s", ErrMQTTConnect, timeout)
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return nil, fmt.Errorf("%w: %w", ErrMQTTConnect, err)
	}
	return newMQTTReporter(client, topic, qos), nil
}

func newMQTTReporter(client publisher, topic string, qos byte) *MQTTReporter {
	if qos > 2 {
		qos = 2
	}
	return &MQTTReporter{client: client, topic: topic, qos: qos}
}

// Report publishes the event without waiting for the broker.
func (r *MQTTReporter) Report(level Level, msg string) {
	payload, err := json.Marshal(NewEvent(level, msg))
	if err != nil {
		return
	}
	token := r.client.Publish(r.topic, r.qos, false, payload)
	go func() {
		if !token.WaitTimeout(mqttPublishTimeout) {
			log.Warn().Str("topic", r.topic).Msg("MQTT progress publish timed out")
			return
		}
		if err := token.Error(); err != nil {
			log.Warn().Err(err).Str("topic", r.topic).Msg("MQTT progress publish failed")
		}
	}()
}

// Close disconnects from the broker.
func (r *MQTTReporter) Close() {
	r.client.Disconnect(mqttQuiesceMillis)
}
