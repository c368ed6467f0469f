package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// DefaultExchange is the topic exchange notifications are published to.
const DefaultExchange = "atlas.events"

// ErrURLEmpty is returned when no broker url is configured.
var ErrURLEmpty = errors.New("amqp url cannot be empty")

// publisher is the part of *amqp091.Channel the notifier needs.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// AMQPNotifier publishes notifications as persistent JSON messages to a topic
// exchange, using the notification kind as routing key.
type AMQPNotifier struct {
	exchange string
	channel  publisher
	closers  []func() error
}

// DialAMQP connects to the broker and declares the exchange.
func DialAMQP(url, exchange string) (*AMQPNotifier, error) {
	if url == "" {
		return nil, ErrURLEmpty
	}

	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()

		return nil, fmt.Errorf("failed to declare exchange %q: %w", exchange, err)
	}

	return &AMQPNotifier{
		exchange: exchange,
		channel:  ch,
		closers:  []func() error{ch.Close, conn.Close},
	}, nil
}

// Notify implements Notifier.
func (n *AMQPNotifier) Notify(ctx context.Context, msg Notification) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	err = n.channel.PublishWithContext(ctx,
		n.exchange,
		string(msg.Kind),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    msg.At,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", msg.Kind, err)
	}

	return nil
}

// Close closes the channel and the connection.
func (n *AMQPNotifier) Close() error {
	var errs []error

	for _, c := range n.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
