package client

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	ballotsExchange = "ballots"
	reconnectDelay  = 5 * time.Second
	subscriberQueue = 100
)

type rabbitBus struct {
	url         string
	conn        *amqp.Connection
	channel     *amqp.Channel
	subscribers map[string]chan []byte
	mu          sync.RWMutex
	closed      bool
}

// NewRabbitMQBus connects to RabbitMQ and declares the fanout exchange
// ballot notifications are published on.
func NewRabbitMQBus(url string) (MessageBus, error) {
	conn, ch, err := dialExchange(url)
	if err != nil {
		return nil, err
	}

	bus := &rabbitBus{
		url:         url,
		conn:        conn,
		channel:     ch,
		subscribers: make(map[string]chan []byte),
	}
	go bus.monitorConnection()

	return bus, nil
}

func dialExchange(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	err = ch.ExchangeDeclare(
		ballotsExchange, // name
		"fanout",        // type
		true,            // durable
		false,           // auto-deleted
		false,           // internal
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

func (b *rabbitBus) monitorConnection() {
	closeChan := make(chan *amqp.Error, 1)
	b.mu.RLock()
	b.conn.NotifyClose(closeChan)
	b.mu.RUnlock()

	amqpErr, ok := <-closeChan
	if !ok {
		return
	}
	logrus.Errorf("RabbitMQ connection closed: %v", amqpErr)

	for {
		time.Sleep(reconnectDelay)

		b.mu.RLock()
		closed := b.closed
		b.mu.RUnlock()
		if closed {
			return
		}

		logrus.Info("Attempting to reconnect to RabbitMQ...")
		conn, ch, err := dialExchange(b.url)
		if err != nil {
			logrus.Errorf("Failed to reconnect to RabbitMQ: %v", err)
			continue
		}

		b.mu.Lock()
		b.conn = conn
		b.channel = ch
		for id, sink := range b.subscribers {
			if err := b.bindConsumer(id, sink); err != nil {
				logrus.Errorf("Failed to resubscribe %s: %v", id, err)
			}
		}
		b.mu.Unlock()

		go b.monitorConnection()
		return
	}
}

// bindConsumer gives the subscriber its own exclusive queue on the exchange
// and forwards deliveries to sink. Callers hold b.mu.
func (b *rabbitBus) bindConsumer(id string, sink chan []byte) error {
	q, err := b.channel.QueueDeclare(
		"",    // name - let RabbitMQ generate a unique name
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}
	if err := b.channel.QueueBind(q.Name, "", ballotsExchange, false, nil); err != nil {
		return err
	}
	deliveries, err := b.channel.Consume(
		q.Name, // queue
		id,     // consumer
		true,   // auto-ack
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return err
	}

	go func() {
		for d := range deliveries {
			b.mu.RLock()
			active := b.subscribers[id] == sink
			if active {
				select {
				case sink <- d.Body:
				default:
					logrus.Warnf("Subscriber %s is not keeping up; dropping message", id)
				}
			}
			b.mu.RUnlock()
			if !active {
				return
			}
		}
	}()
	return nil
}

func (b *rabbitBus) Publish(ctx context.Context, message []byte) error {
	b.mu.RLock()
	ch := b.channel
	b.mu.RUnlock()

	return ch.PublishWithContext(
		ctx,
		ballotsExchange, // exchange
		"",              // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        message,
		})
}

func (b *rabbitBus) Subscribe(id string) (<-chan []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sink, exists := b.subscribers[id]; exists {
		return sink, nil
	}
	sink := make(chan []byte, subscriberQueue)
	b.subscribers[id] = sink
	if err := b.bindConsumer(id, sink); err != nil {
		delete(b.subscribers, id)
		return nil, err
	}
	return sink, nil
}

func (b *rabbitBus) Unsubscribe(id string) error {
	b.mu.Lock()
	sink, exists := b.subscribers[id]
	if exists {
		delete(b.subscribers, id)
		close(sink)
	}
	ch := b.channel
	b.mu.Unlock()

	if !exists || ch == nil || ch.IsClosed() {
		return nil
	}
	return ch.Cancel(id, false)
}

func (b *rabbitBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for id, sink := range b.subscribers {
		delete(b.subscribers, id)
		close(sink)
	}
	if b.channel != nil {
		b.channel.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
