package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Config holds RabbitMQ connection configuration
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Queue    string `yaml:"queue"`
}

// Validate checks the fields needed to dial and declare the queue
func (c Config) Validate() error {
	switch {
	case c.Host == "":
		return errors.New("rabbitmq: empty host")
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("rabbitmq: invalid port %d", c.Port)
	case c.Queue == "":
		return errors.New("rabbitmq: empty queue name")
	}
	return nil
}

// URL builds the amqp connection URL, escaping the credentials
func (c Config) URL() string {
	u := &url.URL{
		Scheme: "amqp",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/",
	}
	if c.Username != "" || c.Password != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	}
	return u.String()
}

// QueueInfo describes the declared queue
type QueueInfo struct {
	Name      string
	Messages  int
	Consumers int
}

// RabbitMQ publishes and consumes tweet rows on a durable queue
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	config  Config
}

// NewRabbitMQ connects, opens a channel and declares the queue
func NewRabbitMQ(config Config) (*RabbitMQ, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	conn, err := amqp.Dial(config.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		config.Queue, // name
		true,         // durable
		false,        // delete when unused
		false,        // exclusive
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// One unacked message at a time for fair dispatch
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	slog.Info("Connected to RabbitMQ", "host", config.Host, "port", config.Port, "queue", q.Name)
	return &RabbitMQ{conn: conn, channel: ch, queue: q, config: config}, nil
}

// Publish sends one persistent message to the queue
func (r *RabbitMQ) Publish(ctx context.Context, body []byte) error {
	err := r.channel.PublishWithContext(ctx,
		"",           // default exchange
		r.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "text/csv",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", r.queue.Name, err)
	}
	return nil
}

// Consume delivers each message body to handle until ctx ends or the channel closes.
// Messages are acked when handle succeeds and dropped (nacked without requeue) when it fails.
func (r *RabbitMQ) Consume(ctx context.Context, handle func([]byte) error) error {
	msgs, err := r.channel.Consume(
		r.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	slog.Info("Waiting for messages", "queue", r.queue.Name)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			if err := handle(msg.Body); err != nil {
				slog.Warn("Dropping message", "queue", r.queue.Name, "error", err)
				if nerr := msg.Nack(false, false); nerr != nil {
					return fmt.Errorf("failed to nack: %w", nerr)
				}
				continue
			}
			if err := msg.Ack(false); err != nil {
				return fmt.Errorf("failed to ack: %w", err)
			}
		}
	}
}

// Close closes the channel and connection; safe on a partially built value
func (r *RabbitMQ) Close() error {
	if r == nil {
		return nil
	}
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// GetQueueInfo returns the queue's current depth and consumer count
func (r *RabbitMQ) GetQueueInfo() (QueueInfo, error) {
	if r == nil || r.channel == nil {
		return QueueInfo{}, errors.New("rabbitmq: channel not open")
	}
	q, err := r.channel.QueueDeclarePassive(r.config.Queue, true, false, false, false, nil)
	if err != nil {
		return QueueInfo{}, fmt.Errorf("failed to inspect queue: %w", err)
	}
	return QueueInfo{Name: q.Name, Messages: q.Messages, Consumers: q.Consumers}, nil
}
