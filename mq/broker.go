package mq

import (
	"fmt"
	"log"

	"github.com/streadway/amqp"
)

// Broker owns one AMQP connection and channel.
type Broker struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
}

// Dial connects and declares every queue in queues as durable.
func Dial(url string, queues ...string) (*Broker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("MQ connect failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("MQ channel failed: %w", err)
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("MQ queue declare %s failed: %w", q, err)
		}
	}

	log.Printf("[MQ] connected, queues declared: %v", queues)
	return &Broker{Conn: conn, Channel: ch}, nil
}

// Consume starts a manual-ack consumer on queue.
func (b *Broker) Consume(queue string) (<-chan amqp.Delivery, error) {
	if err := b.Channel.Qos(16, 0, false); err != nil {
		return nil, fmt.Errorf("MQ qos failed: %w", err)
	}
	msgs, err := b.Channel.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer on %s: %w", queue, err)
	}
	return msgs, nil
}

func (b *Broker) Close() error {
	if err := b.Channel.Close(); err != nil {
		log.Printf("[MQ] channel close: %v", err)
	}
	return b.Conn.Close()
}
