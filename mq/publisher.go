package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"coinquest/services"

	"github.com/streadway/amqp"
)

// Publishing is the part of *amqp.Channel the publisher uses.
type Publishing interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher sends ledger events to a queue as persistent JSON messages.
// amqp channels are not safe for concurrent publishes, so writes are serialised.
type Publisher struct {
	ch    Publishing
	queue string
	mu    sync.Mutex
}

func NewPublisher(ch Publishing, queue string) *Publisher {
	return &Publisher{ch: ch, queue: queue}
}

func (p *Publisher) Publish(ctx context.Context, event services.LedgerEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Publish("", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.Ref,
		Type:         event.Type,
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
}
