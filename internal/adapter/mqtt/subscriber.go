package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/wxpipe/humidity-etl/internal/config"
	"github.com/wxpipe/humidity-etl/internal/domain"
)

// defaultBufferSize bounds the in-flight reading buffer so a stalled
// pipeline applies backpressure by dropping instead of growing without
// limit.
const defaultBufferSize = 1024

// Subscriber consumes station telemetry from an MQTT broker and exposes
// it as batches. It implements pipeline.BatchExtractor.
//
// MQTT has no offset to commit: QoS 1 messages are acknowledged when the
// paho callback returns, so every RawReading carries a nil Commit.
type Subscriber struct {
	client    mqtt.Client
	topic     string
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once

	flushInterval time.Duration
	readings      chan domain.RawReading
}

// NewSubscriber configures an MQTT client for the given broker. Call
// Connect before extracting.
func NewSubscriber(cfg *config.Config, logger *slog.Logger) *Subscriber {
	s := &Subscriber{
		topic:         cfg.MQTTTopic,
		logger:        logger,
		stopCh:        make(chan struct{}),
		flushInterval: cfg.BatchFlushInterval,
		readings:      make(chan domain.RawReading, defaultBufferSize),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBrokerURL)
	opts.SetClientID(cfg.MQTTClientID)

	// Session settings
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	// Keepalive / timeouts
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// Callbacks keep internal state accurate
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		s.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBrokerURL)
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	s.client = mqtt.NewClient(opts)
	return s
}

// Connect establishes the broker connection and subscribes to the
// configured topic.
func (s *Subscriber) Connect(ctx context.Context) error {
	// Fail fast if already stopped.
	select {
	case <-s.stopCh:
		return fmt.Errorf("subscriber stopped")
	default:
	}

	// Fast path.
	if s.IsConnected() {
		return nil
	}

	// Start connect attempt.
	token := s.client.Connect()

	// Wait in a ctx/stop-aware loop.
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			// OnConnectHandler sets connected=true.
			break
		}

		select {
		case <-ctx.Done():
			s.client.Disconnect(0)
			return ctx.Err()
		case <-s.stopCh:
			s.client.Disconnect(0)
			return fmt.Errorf("subscriber stopped")
		default:
		}
	}

	if err := s.subscribe(); err != nil {
		s.client.Disconnect(0)
		return fmt.Errorf("subscribe: %w", err)
	}

	return nil
}

func (s *Subscriber) subscribe() error {
	if !s.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}

	qos := byte(1) // At least once delivery

	messageHandler := func(_ mqtt.Client, msg mqtt.Message) {
		s.handleMessage(msg.Topic(), msg.Payload())
	}

	token := s.client.Subscribe(s.topic, qos, messageHandler)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", s.topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", s.topic, token.Error())
	}

	s.logger.Info("subscribed to mqtt topic", "topic", s.topic, "qos", qos)
	return nil
}

// handleMessage buffers an incoming payload as a raw reading. When the
// buffer is full the message is dropped rather than blocking the paho
// callback, which would stall the whole connection.
func (s *Subscriber) handleMessage(topic string, payload []byte) {
	s.logger.Debug("received mqtt message", "topic", topic, "size", len(payload))

	raw := domain.RawReading{
		Value:     payload,
		Topic:     topic,
		Timestamp: time.Now().UTC(),
	}

	select {
	case s.readings <- raw:
	default:
		s.logger.Warn("reading buffer full, dropping message", "topic", topic)
	}
}

// ExtractBatch collects up to batchSize buffered readings within one
// flush-interval window. A short or empty batch is not an error; the
// pipeline polls again.
func (s *Subscriber) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawReading, error) {
	window := time.NewTimer(s.flushInterval)
	defer window.Stop()

	batch := make([]domain.RawReading, 0, batchSize)
	for len(batch) < batchSize {
		select {
		case <-ctx.Done():
			return batch, ctx.Err()
		case <-window.C:
			return batch, nil
		case raw := <-s.readings:
			batch = append(batch, raw)
		}
	}
	return batch, nil
}

// IsConnected returns whether the client is connected.
func (s *Subscriber) IsConnected() bool {
	s.mu.RLock()
	connected := s.connected
	s.mu.RUnlock()
	return connected && s.client.IsConnected()
}

// Disconnect stops the subscriber and closes the MQTT connection.
// Idempotent and safe to call multiple times.
func (s *Subscriber) Disconnect() {
	// Signal shutdown once (unblocks any Connect loops).
	s.stopOnce.Do(func() { close(s.stopCh) })

	// Unsubscribe before disconnecting
	if s.client != nil && s.IsConnected() {
		token := s.client.Unsubscribe(s.topic)
		token.WaitTimeout(2 * time.Second)
	}

	if s.client != nil {
		s.client.Disconnect(250)
	}

	s.setConnected(false)
	s.logger.Info("mqtt subscriber disconnected")
}

func (s *Subscriber) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}
