package notify

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ZaryabAli-09/ecommerce-backend/internal/kafka"
)

// Publisher enqueues email events for the notifier worker. Publishing is
// fire-and-forget by construction (buffered producer inbox): a slow or down
// broker never blocks or fails the business flow that triggered the email.
type Publisher struct {
	Producer    *kafkax.Producer
	ServiceName string
}

func (p *Publisher) Email(ctx context.Context, orderID string, req EmailRequestedPayload) {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventEmailRequested,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.ServiceName,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(req),
	}
	p.Producer.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventEmailRequested)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
