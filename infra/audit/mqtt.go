package audit

import (
	"context"
	"encoding/json"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"

	coreaudit "github.com/medispatch/engine/core/audit"
	"github.com/medispatch/engine/infra/logger"
)

// MQTTConfig defines the connection parameters for the audit publisher.
type MQTTConfig struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	// Topic is the base topic; events are published under
	// "<topic>/<domain>/<operation>".
	Topic string `json:"topic"`
	QoS   byte   `json:"qos"`
}

// MQTTSink publishes audit events to an MQTT broker so downstream systems
// can consume the decision trail live.
type MQTTSink struct {
	cli   paho.Client
	topic string
	qos   byte
	log   logger.Logger
}

// NewMQTTSink connects to the broker.
func NewMQTTSink(cfg MQTTConfig) (*MQTTSink, error) {
	if cfg.Topic == "" {
		return nil, fmt.Errorf("audit: mqtt topic is required")
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	log := logger.New("audit-mqtt")
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("audit publisher connection lost: %v", err)
	}
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &MQTTSink{cli: cli, topic: cfg.Topic, qos: cfg.QoS, log: log}, nil
}

// Record publishes the event.
func (s *MQTTSink) Record(ctx context.Context, ev coreaudit.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("audit: marshal event: %w", err)
	}
	topic := fmt.Sprintf("%s/%s/%s", s.topic, ev.Domain, ev.Operation)
	token := s.cli.Publish(topic, s.qos, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("audit: publish: %w", err)
	}
	return ctx.Err()
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() error {
	if s.cli != nil && s.cli.IsConnected() {
		s.cli.Disconnect(250)
	}
	return nil
}

// MultiSink fans events out to several sinks, returning the first error.
type MultiSink struct {
	sinks []coreaudit.Sink
}

// NewMultiSink creates a MultiSink.
func NewMultiSink(sinks ...coreaudit.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Record forwards the event to every sink.
func (m *MultiSink) Record(ctx context.Context, ev coreaudit.Event) error {
	for _, s := range m.sinks {
		if err := s.Record(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all sinks, returning the first error.
func (m *MultiSink) Close() error {
	var first error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
