package queue

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Queue is the broker contract for campaign intake. Payloads are raw JSON.
type Queue interface {
	Publish(topic string, body []byte) error
	Subscribe(topic string, handler func(body []byte) error) error
}

// InMemoryQueue is an in-process Queue with the same retry semantics as the
// AMQP implementation. It backs tests and single-node deployments.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(body []byte) error
	log      zerolog.Logger

	// wg lets tests wait for asynchronous deliveries to settle.
	wg sync.WaitGroup
}

func NewInMemoryQueue(log zerolog.Logger) *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(body []byte) error),
		log:      log,
	}
}

const maxDeliveryAttempts = 3

// Publish delivers the body to every subscriber of the topic, each on its
// own goroutine with bounded retries and backoff.
func (q *InMemoryQueue) Publish(topic string, body []byte) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		q.wg.Add(1)
		go q.deliver(topic, handler, body)
	}
	return nil
}

func (q *InMemoryQueue) deliver(topic string, handler func(body []byte) error, body []byte) {
	defer q.wg.Done()
	for attempt := 1; attempt <= maxDeliveryAttempts; attempt++ {
		err := handler(body)
		if err == nil {
			return
		}
		q.log.Warn().Err(err).
			Str("topic", topic).
			Int("attempt", attempt).
			Msg("queue delivery failed")
		if attempt == maxDeliveryAttempts {
			q.log.Error().Str("topic", topic).Msg("queue delivery permanently failed")
			return
		}
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic.
func (q *InMemoryQueue) Subscribe(topic string, handler func(body []byte) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Drain blocks until deliveries in flight complete. Test helper.
func (q *InMemoryQueue) Drain() {
	q.wg.Wait()
}
