package kafka

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

// Handler must return nil only when processing succeeded and the offset may
// be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r       *kafka.Reader
	workers int
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers}
}

// Start runs the dispatcher plus the worker pool and blocks until the
// context is canceled or the reader fails.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 1024)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < c.workers; i++ {
		g.Go(func() error {
			for m := range jobs {
				if err := h(gctx, m); err != nil {
					log.Printf("kafka: handler error: %v", err)
					time.Sleep(200 * time.Millisecond) // light backoff
					continue
				}
				if err := c.r.CommitMessages(gctx, m); err != nil {
					log.Printf("kafka: commit error: %v", err)
				}
			}
			return nil
		})
	}

	var readErr error
	for {
		m, err := c.r.ReadMessage(gctx)
		if err != nil {
			// quiet exit on shutdown
			select {
			case <-gctx.Done():
			default:
				readErr = err
			}
			break
		}
		select {
		case jobs <- m:
		case <-gctx.Done():
		}
		if gctx.Err() != nil {
			break
		}
	}
	close(jobs)
	if err := g.Wait(); err != nil && readErr == nil {
		readErr = err
	}
	return readErr
}
