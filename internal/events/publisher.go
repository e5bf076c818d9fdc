// Package events ships stat records to RabbitMQ for the reporting side.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/lalith-99/controlpanel/internal/models"
)

// StatsQueue is the durable queue stat records are published to.
const StatsQueue = "show.stats"

// StatEvent is the message body published for one stat record.
type StatEvent struct {
	ShowToken    string          `json:"show_token"`
	Kind         models.StatKind `json:"kind"`
	Action       string          `json:"action"`
	SequenceName string          `json:"sequence_name,omitempty"`
	Owner        bool            `json:"owner"`
	DateTime     time.Time       `json:"date_time"`
}

func NewStatEvent(showToken string, stat models.Stat) StatEvent {
	return StatEvent{
		ShowToken:    showToken,
		Kind:         stat.Kind,
		Action:       stat.Action,
		SequenceName: stat.SequenceName,
		Owner:        stat.Owner,
		DateTime:     stat.DateTime.UTC(),
	}
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes stat events over one long-lived connection.
// amqp channels are not safe for concurrent publishes, so Publish
// serializes on mu.
type AMQPPublisher struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     channel
	logger *zap.Logger
}

// Dial connects to the broker and declares StatsQueue.
func Dial(url string, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		StatsQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	logger.Info("rabbitmq publisher ready", zap.String("queue", StatsQueue))
	return &AMQPPublisher{conn: conn, ch: ch, logger: logger}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, showToken string, stat models.Stat) error {
	body, err := json.Marshal(NewStatEvent(showToken, stat))
	if err != nil {
		return fmt.Errorf("encode stat event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    stat.DateTime.UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, "", StatsQueue, false, false, msg); err != nil {
		return fmt.Errorf("publish stat event: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger.Info("closing rabbitmq publisher")
	if err := p.ch.Close(); err != nil {
		p.logger.Warn("failed to close channel", zap.Error(err))
	}
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

// NopPublisher drops every record. Used when RABBITMQ_URL is not set.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, models.Stat) error {
	return nil
}
