package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler processes one message body. A returned error asks for a retry.
type Handler func(body []byte) error

// Queue interface
type Queue interface {
	Publish(ctx context.Context, topic string, body []byte) error
	Subscribe(topic string, handler Handler) error
}

// InMemoryQueue delivers to in-process subscribers with retry.
type InMemoryQueue struct {
	mu         sync.Mutex
	handlers   map[string][]Handler
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
	wg         sync.WaitGroup
}

func NewInMemoryQueue(logger *zap.Logger) *InMemoryQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryQueue{
		handlers:   make(map[string][]Handler),
		maxRetries: 3,
		backoff:    500 * time.Millisecond,
		logger:     logger.Named("queue"),
	}
}

// job wraps a message body with retry info
type job struct {
	topic      string
	body       []byte
	retryCount int
}

// Publish sends a message to all subscribers of topic.
func (q *InMemoryQueue) Publish(ctx context.Context, topic string, body []byte) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, h := range handlers {
		q.wg.Add(1)
		go q.processJob(h, job{topic: topic, body: body})
	}
	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(h Handler, j job) {
	defer q.wg.Done()
	for {
		err := h(j.body)
		if err == nil {
			return
		}

		j.retryCount++
		q.logger.Warn("job failed",
			zap.String("topic", j.topic),
			zap.Int("attempt", j.retryCount),
			zap.Int("max_retries", q.maxRetries),
			zap.Error(err),
		)
		if j.retryCount > q.maxRetries {
			q.logger.Error("job permanently failed", zap.String("topic", j.topic))
			return
		}

		// linear backoff before retry
		time.Sleep(time.Duration(j.retryCount) * q.backoff)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler Handler) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Wait blocks until every published job has finished.
func (q *InMemoryQueue) Wait() {
	q.wg.Wait()
}

var _ Queue = (*InMemoryQueue)(nil)
