package mq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
)

func PublishMessage(ctx context.Context, ch *amqp.Channel, exchangeName string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(
		ctx,
		exchangeName,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message to exchange %s: %w", exchangeName, err)
	}

	return nil
}

// CatalogPublisher announces catalog changes on the fanout exchange. Channels
// are not safe for concurrent publishing, so one channel is shared under a lock.
type CatalogPublisher struct {
	conn *amqp.Connection

	mu sync.Mutex
	ch *amqp.Channel
}

func NewCatalogPublisher(conn *amqp.Connection) *CatalogPublisher {
	return &CatalogPublisher{conn: conn}
}

func (p *CatalogPublisher) CatalogChanged(ctx context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		ch, err := NewChannel(p.conn)
		if err != nil {
			return err
		}
		p.ch = ch
	}
	return PublishMessage(ctx, p.ch, CatalogChangedExchange, CatalogChangedMessage{UserID: userID})
}

func (p *CatalogPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	return p.ch.Close()
}
