package roster

import (
	"encoding/json"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/medispatch/engine/core/model"
	coreroster "github.com/medispatch/engine/core/roster"
	"github.com/medispatch/engine/infra/logger"
)

// MQTTConfig defines the connection parameters for the live roster feed.
type MQTTConfig struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	// Topic is the unit status topic, normally a wildcard such as
	// "ems/units/+/status". The CAD publishes retained messages so a fresh
	// subscriber receives the full roster on connect.
	Topic string `json:"topic"`
	QoS   byte   `json:"qos"`
}

// MQTTSubscriber maintains a MemoryStore from unit status messages.
type MQTTSubscriber struct {
	cli   paho.Client
	store *coreroster.MemoryStore
	topic string
	qos   byte
	log   logger.Logger
}

// NewMQTTSubscriber connects to the broker and starts feeding store. The
// subscription is re-established on reconnect.
func NewMQTTSubscriber(cfg MQTTConfig, store *coreroster.MemoryStore) (*MQTTSubscriber, error) {
	if cfg.Topic == "" {
		return nil, fmt.Errorf("roster: mqtt topic is required")
	}
	if store == nil {
		return nil, fmt.Errorf("roster: nil store")
	}
	s := &MQTTSubscriber{
		store: store,
		topic: cfg.Topic,
		qos:   cfg.QoS,
		log:   logger.New("roster-mqtt"),
	}

	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(c paho.Client) {
		s.log.Infof("roster feed connected")
		if token := c.Subscribe(s.topic, s.qos, s.handleMessage); token.Wait() && token.Error() != nil {
			s.log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		s.log.Errorf("roster feed connection lost: %v", err)
	}

	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	s.cli = cli
	return s, nil
}

// statusMessage is the wire form of one unit update. An empty unit with
// Removed set drops the unit from the roster.
type statusMessage struct {
	Removed bool `json:"removed,omitempty"`
	model.Unit
}

func (s *MQTTSubscriber) handleMessage(_ paho.Client, msg paho.Message) {
	var sm statusMessage
	if err := json.Unmarshal(msg.Payload(), &sm); err != nil {
		s.log.Errorf("bad unit payload on %s: %v", msg.Topic(), err)
		return
	}
	if sm.Removed {
		s.store.Remove(sm.ID)
		s.log.Debugf("unit %s removed from roster", sm.ID)
		return
	}
	if err := sm.Unit.Validate(); err != nil {
		s.log.Errorf("invalid unit on %s: %v", msg.Topic(), err)
		return
	}
	s.store.Upsert(sm.Unit)
	s.log.Debugf("unit %s now %s", sm.ID, sm.Status)
}

// Close disconnects from the broker.
func (s *MQTTSubscriber) Close() {
	if s.cli != nil && s.cli.IsConnected() {
		s.cli.Disconnect(250)
	}
}
