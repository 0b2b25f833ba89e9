package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkax "github.com/ZaryabAli-09/ecommerce-backend/internal/kafka"
)

type fakeResolver struct {
	contacts map[Recipient]*Contact
}

func (f *fakeResolver) Resolve(ctx context.Context, rec Recipient) (*Contact, error) {
	c, ok := f.contacts[rec]
	if !ok {
		return nil, nil
	}
	return c, nil
}

type fakeSender struct {
	sent []string // "to/template"
	fail bool
}

func (f *fakeSender) Send(ctx context.Context, to, name, template string, data map[string]any) error {
	if f.fail {
		return errors.New("relay down")
	}
	f.sent = append(f.sent, to+"/"+template)
	return nil
}

func emailMessage(t *testing.T, eventType string, p EmailRequestedPayload) kafkago.Message {
	t.Helper()
	env := Envelope{
		EventID:      "ev-1",
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "test",
		Payload:      kafkax.MustMarshal(p),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestHandleEmailEvent_Delivers(t *testing.T) {
	sender := &fakeSender{}
	svc := &Service{
		Resolver: &fakeResolver{contacts: map[Recipient]*Contact{
			{Kind: KindBuyer, ID: "b1"}: {Email: "b1@example.com", Name: "Bea"},
		}},
		Sender:      sender,
		ServiceName: "test-notifier",
	}

	m := emailMessage(t, EventEmailRequested, EmailRequestedPayload{
		Recipient: Recipient{Kind: KindBuyer, ID: "b1"},
		Template:  TemplateOrderConfirmation,
	})
	require.NoError(t, svc.HandleEmailEvent(context.Background(), m))
	assert.Equal(t, []string{"b1@example.com/" + TemplateOrderConfirmation}, sender.sent)
}

func TestHandleEmailEvent_IgnoresOtherEvents(t *testing.T) {
	sender := &fakeSender{}
	svc := &Service{Resolver: &fakeResolver{}, Sender: sender}

	m := emailMessage(t, "SomethingElse", EmailRequestedPayload{})
	require.NoError(t, svc.HandleEmailEvent(context.Background(), m))
	assert.Empty(t, sender.sent)
}

func TestHandleEmailEvent_UnknownRecipientDropped(t *testing.T) {
	sender := &fakeSender{}
	svc := &Service{Resolver: &fakeResolver{}, Sender: sender}

	m := emailMessage(t, EventEmailRequested, EmailRequestedPayload{
		Recipient: Recipient{Kind: KindSeller, ID: "ghost"},
		Template:  TemplateOrderPlacedSeller,
	})
	// dropped, not retried: the handler commits
	require.NoError(t, svc.HandleEmailEvent(context.Background(), m))
	assert.Empty(t, sender.sent)
}

func TestHandleEmailEvent_SendFailureSwallowed(t *testing.T) {
	svc := &Service{
		Resolver: &fakeResolver{contacts: map[Recipient]*Contact{
			{Kind: KindBuyer, ID: "b1"}: {Email: "b1@example.com"},
		}},
		Sender: &fakeSender{fail: true},
	}

	m := emailMessage(t, EventEmailRequested, EmailRequestedPayload{
		Recipient: Recipient{Kind: KindBuyer, ID: "b1"},
		Template:  TemplateOrderConfirmation,
	})
	require.NoError(t, svc.HandleEmailEvent(context.Background(), m))
}

func TestResolver_UnknownKind(t *testing.T) {
	r := &Resolver{byKind: map[RecipientKind]ResolveFunc{}}
	_, err := r.Resolve(context.Background(), Recipient{Kind: "warehouse", ID: "x"})
	assert.Error(t, err)
}
