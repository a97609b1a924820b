package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/formflow/formflow-backend/pkg/config"
	"github.com/formflow/formflow-backend/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	heartbeat       = 10 * time.Second
	maxReconnectGap = time.Minute
)

var errClosed = errors.New("rabbitmq connection is permanently closed")

// RabbitMQ owns the broker connection and the single channel events go out on.
// Exchanges declared through it are redeclared after every reconnect.
type RabbitMQ struct {
	cfg *config.RabbitMQConfig
	log *logger.Logger

	mu        sync.RWMutex
	conn      *amqp.Connection
	channel   *amqp.Channel
	exchanges []string
	closed    bool
}

// New dials the broker once. Use Watch to keep the connection alive afterwards.
func New(cfg *config.RabbitMQConfig, log *logger.Logger) (*RabbitMQ, error) {
	r := &RabbitMQ{cfg: cfg, log: log.WithComponent("rabbitmq")}

	conn, ch, err := r.dial()
	if err != nil {
		return nil, err
	}
	r.conn, r.channel = conn, ch

	r.log.Info().Msg("connected to RabbitMQ")
	return r, nil
}

func (r *RabbitMQ) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(r.cfg.URL, amqp.Config{
		Heartbeat:  heartbeat,
		Properties: amqp.Table{"connection_name": "formflow-extraction"},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	return conn, ch, nil
}

// Channel returns the live channel. It changes after a reconnect, so do not cache it.
func (r *RabbitMQ) Channel() *amqp.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channel
}

// DeclareExchange declares a durable topic exchange and remembers it for reconnects
func (r *RabbitMQ) DeclareExchange(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := declareTopic(r.channel, name); err != nil {
		return err
	}
	r.exchanges = append(r.exchanges, name)
	return nil
}

func declareTopic(ch *amqp.Channel, name string) error {
	return ch.ExchangeDeclare(
		name,    // name
		"topic", // type
		true,    // durable
		false,   // auto-deleted
		false,   // internal
		false,   // no-wait
		nil,     // arguments
	)
}

// Reconnect redials with doubling backoff, up to MaxRetries attempts.
// The lock is only held to swap the new connection in.
func (r *RabbitMQ) Reconnect(ctx context.Context) error {
	delay := r.cfg.ReconnectDelay
	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		if r.isClosed() {
			return errClosed
		}

		conn, ch, err := r.dial()
		if err == nil {
			if err = r.swap(conn, ch); err == nil {
				r.log.Info().Int("attempt", attempt).Msg("reconnected to RabbitMQ")
				return nil
			}
			conn.Close()
		}
		r.log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("reconnect attempt failed")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, maxReconnectGap)
	}

	return fmt.Errorf("reconnect to rabbitmq: gave up after %d attempts", r.cfg.MaxRetries)
}

func (r *RabbitMQ) swap(conn *amqp.Connection, ch *amqp.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errClosed
	}
	for _, name := range r.exchanges {
		if err := declareTopic(ch, name); err != nil {
			return fmt.Errorf("redeclare exchange %s: %w", name, err)
		}
	}
	r.conn, r.channel = conn, ch
	return nil
}

func (r *RabbitMQ) isClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

// Watch reconnects whenever the broker drops the connection. It returns when
// ctx is done, after Close, or once reconnecting gives up.
func (r *RabbitMQ) Watch(ctx context.Context) {
	for {
		r.mu.RLock()
		conn, closed := r.conn, r.closed
		r.mu.RUnlock()
		if closed || conn == nil {
			return
		}

		notify := conn.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-ctx.Done():
			return
		case amqpErr := <-notify:
			if r.isClosed() {
				return
			}
			r.log.Warn().Interface("reason", amqpErr).Msg("RabbitMQ connection lost")
			if err := r.Reconnect(ctx); err != nil {
				r.log.Error().Err(err).Msg("giving up on RabbitMQ")
				return
			}
		}
	}
}

// Health reports whether the connection is currently open
func (r *RabbitMQ) Health() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.conn == nil || r.conn.IsClosed() {
		return map[string]string{"status": "down", "error": "connection closed"}
	}
	return map[string]string{"status": "up"}
}

// Close shuts the channel and connection down for good
func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			r.log.Warn().Err(err).Msg("failed to close channel")
		}
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %w", err)
		}
	}

	r.log.Info().Msg("RabbitMQ connection closed")
	return nil
}
