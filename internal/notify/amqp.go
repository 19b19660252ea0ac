package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"cabin_boarding/internal/models"
)

// AMQPPublisher sends events to a durable RabbitMQ queue as persistent JSON
// messages.
type AMQPPublisher struct {
	*eventQueue
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewAMQPPublisher dials the broker and declares the queue.
func NewAMQPPublisher(url, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: queue declare: %w", err)
	}
	return &AMQPPublisher{
		eventQueue: newEventQueue(sinkBuffer),
		conn:       conn,
		channel:    ch,
		queue:      queue,
	}, nil
}

func (p *AMQPPublisher) Notify(ev models.Event) {
	p.offer(ev)
}

// Run publishes queued events until ctx is done.
func (p *AMQPPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.ch:
			if err := p.publish(ctx, ev); err != nil {
				log.Printf("rabbitmq: publish %s: %v", ev.Type, err)
			}
		}
	}
}

func (p *AMQPPublisher) publish(ctx context.Context, ev models.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(ev.Type),
		Body:         body,
	}
	return p.channel.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		msg,
	)
}

func (p *AMQPPublisher) Close() error {
	_ = p.channel.Close()
	return p.conn.Close()
}
