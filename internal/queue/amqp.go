package queue

import (
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

// AMQPQueue implements Queue over RabbitMQ. Each topic maps to a durable
// queue; consumption uses manual acks with requeue-on-failure capped by an
// x-retry-count header.
type AMQPQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  zerolog.Logger
}

func NewAMQPQueue(url string, log zerolog.Logger) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &AMQPQueue{conn: conn, ch: ch, log: log}, nil
}

func (q *AMQPQueue) declare(topic string) (amqp.Queue, error) {
	return q.ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
}

func (q *AMQPQueue) Publish(topic string, body []byte) error {
	if _, err := q.declare(topic); err != nil {
		return err
	}
	return q.ch.Publish(
		"", topic, false, false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	)
}

func (q *AMQPQueue) Subscribe(topic string, handler func(body []byte) error) error {
	queue, err := q.declare(topic)
	if err != nil {
		return err
	}
	msgs, err := q.ch.Consume(
		queue.Name,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		for d := range msgs {
			if err := handler(d.Body); err != nil {
				retryCount := 0
				if v, ok := d.Headers["x-retry-count"].(int32); ok {
					retryCount = int(v)
				}
				q.log.Warn().Err(err).
					Str("topic", topic).
					Int("retry_count", retryCount).
					Msg("intake handler failed")
				if retryCount < maxDeliveryAttempts {
					// Republish with the bumped counter; a plain nack would
					// lose it.
					_ = q.ch.Publish("", topic, false, false, amqp.Publishing{
						DeliveryMode: amqp.Persistent,
						ContentType:  "application/json",
						Body:         d.Body,
						Headers:      amqp.Table{"x-retry-count": int32(retryCount + 1)},
					})
				} else {
					q.log.Error().Str("topic", topic).Msg("intake job dropped after max retries")
				}
			}
			d.Ack(false)
		}
	}()
	return nil
}

func (q *AMQPQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}
