package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ZaryabAli-09/ecommerce-backend/internal/redisx"
)

type ContactResolver interface {
	Resolve(ctx context.Context, rec Recipient) (*Contact, error)
}

// Service is the notifier worker: it consumes email events and delivers
// them through the relay. Delivery problems are logged and the event is
// committed anyway; a notification must never wedge the queue.
type Service struct {
	Resolver    ContactResolver
	Sender      Sender
	Redis       *redis.Client
	ServiceName string
}

// HandleEmailEvent is installed as the consumer handler for TopicEmail.
func (s *Service) HandleEmailEvent(ctx context.Context, m kafkago.Message) error {
	var env Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != EventEmailRequested {
		return nil // ignore
	}

	// dedup via Redis (by event_id); retried deliveries of a processed
	// event are dropped
	dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
	if s.Redis != nil {
		exists, _ := redisx.Exists(ctx, s.Redis, dkey)
		if exists {
			return nil
		}
	}

	var p EmailRequestedPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return err
	}

	contact, err := s.Resolver.Resolve(ctx, p.Recipient)
	if err != nil {
		log.Printf("notify: resolve %s/%s: %v", p.Recipient.Kind, p.Recipient.ID, err)
		return nil
	}
	if contact == nil {
		log.Printf("notify: recipient %s/%s not found, dropping", p.Recipient.Kind, p.Recipient.ID)
		return nil
	}

	if err := s.Sender.Send(ctx, contact.Email, contact.Name, p.Template, p.Data); err != nil {
		log.Printf("notify: send %s to %s: %v", p.Template, contact.Email, err)
		return nil
	}

	if s.Redis != nil {
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}
	return nil
}
