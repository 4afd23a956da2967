package workflow

import (
	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/qs-lzh/film-catalog/internal/mq"
)

// CatalogListener receives catalog change events for one user.
type CatalogListener interface {
	CatalogChanged(userID string)
}

// CatalogWorkflow relays catalog change events from the fanout exchange to the
// websocket hub of this instance.
type CatalogWorkflow struct {
	listener CatalogListener
	log      *zap.Logger
}

func NewCatalogWorkflow(listener CatalogListener, log *zap.Logger) *CatalogWorkflow {
	return &CatalogWorkflow{
		listener: listener,
		log:      log,
	}
}

func (w *CatalogWorkflow) Start(mqConn *amqp.Connection) error {
	if err := w.ConsumeCatalogChanged(mqConn); err != nil {
		return err
	}
	return nil
}

func (w *CatalogWorkflow) ConsumeCatalogChanged(conn *amqp.Connection) error {
	ch, err := mq.NewChannel(conn)
	if err != nil {
		return err
	}

	queue, err := mq.BindExclusiveQueue(ch, mq.CatalogChangedExchange)
	if err != nil {
		ch.Close()
		return err
	}

	msgs, err := ch.Consume(queue, "", false, true, false, false, nil)
	if err != nil {
		ch.Close()
		return err
	}

	go func() {
		for msg := range msgs {
			if err := w.handleCatalogChanged(msg); err != nil {
				w.log.Warn("failed to handle catalog change", zap.Error(err))
			}
		}
		w.log.Info("catalog change consumer stopped")
	}()

	return nil
}

// Delivery is the part of amqp.Delivery the handler needs.
type Delivery interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (w *CatalogWorkflow) handleCatalogChanged(msg amqp.Delivery) error {
	return w.handle(msg.Body, msg)
}

func (w *CatalogWorkflow) handle(body []byte, ack Delivery) error {
	var message mq.CatalogChangedMessage
	if err := json.Unmarshal(body, &message); err != nil {
		_ = ack.Nack(false, false)
		return err
	}
	if message.UserID == "" {
		_ = ack.Nack(false, false)
		return nil
	}

	w.listener.CatalogChanged(message.UserID)
	return ack.Ack(false)
}
