// Package mqtt republishes live observations to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/tempest-display/internal/weather"
)

const publishTimeout = time.Second

var (
	ErrNotConnected = errors.New("mqtt client not connected")
	ErrStopped      = errors.New("mqtt client stopped")
)

// Config is the broker connection.
type Config struct {
	Broker   string
	Port     int
	ClientID string
	Topic    string
}

// Message is the JSON payload of one observation.
type Message struct {
	DeviceID    int                 `json:"device_id"`
	Observation weather.Observation `json:"observation"`
}

// Topic is the per-device topic under prefix.
func Topic(prefix string, deviceID int) string {
	return strings.TrimRight(prefix, "/") + "/" + strconv.Itoa(deviceID)
}

// Publisher sends observations with QoS 0.
type Publisher struct {
	client    paho.Client
	topic     string
	log       logrus.FieldLogger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewPublisher configures a client with automatic reconnects. Call Connect
// before publishing.
func NewPublisher(cfg Config, log logrus.FieldLogger) *Publisher {
	p := &Publisher{
		topic:  cfg.Topic,
		log:    log.WithField("broker", cfg.Broker),
		stopCh: make(chan struct{}),
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ paho.Client) {
		p.setConnected(true)
		p.log.Info("mqtt connected")
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		p.setConnected(false)
		p.log.WithError(err).Warn("mqtt connection lost")
	})

	p.client = paho.NewClient(opts)
	return p
}

// Connect waits for the initial connection, honouring ctx and Disconnect.
func (p *Publisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return ErrStopped
	default:
	}
	if p.IsConnected() {
		return nil
	}

	token := p.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return ErrStopped
		default:
		}
	}
}

// Publish sends obs to <topic>/<deviceID>.
func (p *Publisher) Publish(deviceID int, obs weather.Observation) error {
	if !p.IsConnected() {
		return ErrNotConnected
	}

	data, err := json.Marshal(Message{DeviceID: deviceID, Observation: obs})
	if err != nil {
		return fmt.Errorf("marshal observation: %w", err)
	}

	topic := Topic(p.topic, deviceID)
	token := p.client.Publish(topic, 0, false, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish observation: %w", err)
	}

	p.log.WithField("topic", topic).Debug("published observation")
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Disconnect closes the connection. It is idempotent.
func (p *Publisher) Disconnect() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.client.Disconnect(250)
	p.setConnected(false)
	p.log.Info("mqtt disconnected")
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}
