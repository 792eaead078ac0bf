package triallog

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher is the part of mqtt.Client the MQTT sink uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
}

const (
	// QoS 1 so that no trial is silently dropped by the broker.
	QoS            = 1
	PublishTimeout = 5 * time.Second
)

// MQTT publishes every trial as JSON on Topic and the final thresholds on
// Topic + "/summary".
type MQTT struct {
	Client  Publisher
	Topic   string
	Timeout time.Duration
}

func NewMQTT(client Publisher, topic string) *MQTT {
	return &MQTT{Client: client, Topic: topic, Timeout: PublishTimeout}
}

// Dial connects to broker, for example tcp://localhost:1883.
func Dial(broker, client_id string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(client_id).
		SetConnectTimeout(PublishTimeout)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker %s: %w", broker, token.Error())
	}
	return client, nil
}

func (m *MQTT) publish(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	token := m.Client.Publish(topic, QoS, false, payload)
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = PublishTimeout
	}
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("timed out publishing to %s after %s", topic, timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

func (m *MQTT) RecordTrial(t Trial) error { return m.publish(m.Topic, t) }

func (m *MQTT) RecordSummary(f []Final) error { return m.publish(m.Topic+"/summary", f) }
