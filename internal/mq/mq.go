package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/plainpress/server/config"
)

var (
	// ErrDisabled is returned by Open when no events backend is configured.
	ErrDisabled = errors.New("events backend disabled")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("events backend closed")
)

// Message is a payload delivered to subscribers, independent of the broker.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. A non-nil error asks the broker to redeliver.
type Handler func(ctx context.Context, msg Message) error

// Backend is implemented by each supported broker.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// MQ is the broker handle shared by publishers and subscribers.
type MQ struct {
	backend Backend

	mu     sync.RWMutex
	closed bool
}

func New(backend Backend) *MQ {
	return &MQ{backend: backend}
}

// Open connects to the broker selected by cfg.Events.Backend.
func Open(ctx context.Context, cfg config.Config) (*MQ, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Events.Backend)) {
	case "", "none":
		return nil, ErrDisabled
	case "rabbitmq":
		backend, err := NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	case "pubsub":
		backend, err := NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Events.Backend)
	}
}

// Publish sends data to channel and returns the broker message id.
func (m *MQ) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", ErrClosed
	}
	return m.backend.Publish(ctx, channel, data, attrs)
}

// Subscribe blocks, handing messages from channel to handler until ctx is done.
func (m *MQ) Subscribe(ctx context.Context, channel string, handler Handler) error {
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	return m.backend.Subscribe(ctx, channel, handler)
}

// Close releases the broker connection. Calling it twice is a no-op.
func (m *MQ) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.backend.Close()
}
