package mq

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

func InitExchanges(mqConn *amqp.Connection) error {
	ch, err := NewChannel(mqConn)
	if err != nil {
		return err
	}
	defer ch.Close()

	return SetupFanoutExchange(ch, CatalogChangedExchange)
}

func NewMQConn(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func NewChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func SetupFanoutExchange(ch *amqp.Channel, exchangeName string) error {
	return ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil)
}

// BindExclusiveQueue declares a server-named queue that lives as long as the
// channel and binds it to the exchange.
func BindExclusiveQueue(ch *amqp.Channel, exchangeName string) (string, error) {
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return "", err
	}
	if err := ch.QueueBind(q.Name, "", exchangeName, false, nil); err != nil {
		return "", err
	}
	return q.Name, nil
}
