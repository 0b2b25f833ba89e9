package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ZaryabAli-09/ecommerce-backend/internal/catalog"
	"github.com/ZaryabAli-09/ecommerce-backend/internal/notify"
	"github.com/ZaryabAli-09/ecommerce-backend/internal/payments"
	"github.com/ZaryabAli-09/ecommerce-backend/internal/redisx"
)

// Store is the order side of persistence. The pgx implementation runs each
// mutation together with its inventory deltas in one transaction.
type Store interface {
	Create(ctx context.Context, o *Order, deltas []StockDelta) error
	TransitionStatus(ctx context.Context, orderID string, from, to Status, deltas []StockDelta) error
	FindByTransactionID(ctx context.Context, transactionID string) (*Order, error)
	GetByID(ctx context.Context, orderID string) (*Order, error)
	List(ctx context.Context, f Filter) ([]*Order, int, error)
	Delete(ctx context.Context, orderID string) (bool, error)
}

// Catalog is the read side of the variant stock ledger.
type Catalog interface {
	GetVariant(ctx context.Context, productID, variantID string) (*catalog.Variant, error)
}

// Notifier delivers transactional email asynchronously. Calls never fail and
// never block; a lost notification never affects the surrounding operation.
type Notifier interface {
	Email(ctx context.Context, orderID string, req notify.EmailRequestedPayload)
}

type Service struct {
	Store    Store
	Catalog  Catalog
	Payments payments.CheckoutProvider
	Notifier Notifier
	Redis    *redis.Client // optional fast path; the store stays the truth
}

type ItemInput struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Qty       int    `json:"quantity"`
}

type PlaceOrderInput struct {
	Items         []ItemInput     `json:"orderItems"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Shipping      ShippingAddress `json:"shippingAddress"`
}

// PlaceOrder is the cash/manual payment path: validate, price, then create
// the order and deduct stock all-or-nothing. Seller and buyer notifications
// go out after the commit, best-effort.
func (s *Service) PlaceOrder(ctx context.Context, buyerID string, in PlaceOrderInput) (*Order, error) {
	if in.PaymentMethod == "" {
		return nil, errf(KindValidation, "payment method is required")
	}
	items, sellerID, total, err := s.validateAndPrice(ctx, in.Items, in.Shipping)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:            uuid.NewString(),
		OrderBy:       buyerID,
		SellerID:      sellerID,
		Items:         items,
		TotalCents:    total,
		PaymentMethod: in.PaymentMethod,
		Status:        StatusPending,
		Shipping:      in.Shipping,
	}
	if err := s.Store.Create(ctx, o, deltasFor(items, -1)); err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return nil, errf(KindInsufficientStock, "insufficient stock for one or more items")
		}
		return nil, err
	}

	s.notifyPlaced(ctx, o)
	return o, nil
}

// checkoutIntent is the validated order request serialized into the payment
// session's metadata. Nothing is persisted until the payment confirms.
type checkoutIntent struct {
	BuyerID       string          `json:"buyerId"`
	Items         []ItemInput     `json:"orderItems"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Shipping      ShippingAddress `json:"shippingAddress"`
}

const metadataIntentKey = "order_intent"

// CreateCheckoutSession validates the order request and opens a hosted
// checkout session carrying the intent as opaque metadata. No order row and
// no stock mutation happens here; an abandoned session leaves no state.
func (s *Service) CreateCheckoutSession(ctx context.Context, buyerID string, in PlaceOrderInput) (*payments.Session, error) {
	items, _, _, err := s.validateAndPrice(ctx, in.Items, in.Shipping)
	if err != nil {
		return nil, err
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = PaymentCard
	}

	intent, err := json.Marshal(checkoutIntent{
		BuyerID:       buyerID,
		Items:         in.Items,
		PaymentMethod: in.PaymentMethod,
		Shipping:      in.Shipping,
	})
	if err != nil {
		return nil, err
	}

	lines := make([]payments.LineItem, 0, len(items))
	for _, it := range items {
		name := it.Name
		if it.Size != "" || it.Color != "" {
			name = fmt.Sprintf("%s (%s %s)", it.Name, it.Size, it.Color)
		}
		lines = append(lines, payments.LineItem{
			Name:        name,
			AmountCents: it.PriceCents,
			Quantity:    int64(it.Qty),
		})
	}

	sess, err := s.Payments.CreateSession(ctx, payments.CreateSessionParams{
		LineItems: lines,
		Metadata:  map[string]string{metadataIntentKey: string(intent)},
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return sess, nil
}

// ConfirmCheckout reconciles a completed payment session with exactly one
// order. Safe to call any number of times for the same session: the
// provider's payment id is the dedup key.
func (s *Service) ConfirmCheckout(ctx context.Context, buyerID, sessionID string) (*Order, error) {
	if sessionID == "" {
		return nil, errf(KindValidation, "session_id is required")
	}

	sess, err := s.Payments.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}
	if !sess.Paid || sess.PaymentID == "" {
		return nil, errf(KindPaymentNotCompleted, "payment has not completed for this session")
	}

	// fast path: a previous confirmation of this payment left its order id
	// in Redis
	if s.Redis != nil {
		idemKey := fmt.Sprintf(redisx.KeyIdemCheckout, sess.PaymentID)
		if orderID, err := s.Redis.Get(ctx, idemKey).Result(); err == nil && orderID != "" {
			if o, err := s.Store.GetByID(ctx, orderID); err == nil && o != nil {
				return s.guardOwner(o, buyerID)
			}
		}
	}

	if existing, err := s.Store.FindByTransactionID(ctx, sess.PaymentID); err != nil {
		return nil, err
	} else if existing != nil {
		s.cacheConfirmation(ctx, sess.PaymentID, existing.ID)
		return s.guardOwner(existing, buyerID)
	}

	raw, ok := sess.Metadata[metadataIntentKey]
	if !ok {
		return nil, errf(KindInternal, "checkout session carries no order intent")
	}
	var intent checkoutIntent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		return nil, errf(KindInternal, "checkout session order intent is malformed")
	}
	if intent.BuyerID != buyerID {
		return nil, errf(KindForbidden, "checkout session belongs to another buyer")
	}

	// session metadata may be stale; validate and price again
	items, sellerID, total, err := s.validateAndPrice(ctx, intent.Items, intent.Shipping)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:            uuid.NewString(),
		OrderBy:       intent.BuyerID,
		SellerID:      sellerID,
		Items:         items,
		TotalCents:    total,
		PaymentMethod: intent.PaymentMethod,
		Payment:       &PaymentDetails{TransactionID: sess.PaymentID},
		Status:        StatusPending,
		Shipping:      intent.Shipping,
	}
	if err := s.Store.Create(ctx, o, deltasFor(items, -1)); err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return nil, errf(KindInsufficientStock, "insufficient stock for one or more items")
		}
		return nil, err
	}

	s.cacheConfirmation(ctx, sess.PaymentID, o.ID)
	s.notifyPlaced(ctx, o)
	return o, nil
}

func (s *Service) guardOwner(o *Order, buyerID string) (*Order, error) {
	if o.OrderBy != buyerID {
		return nil, errf(KindForbidden, "order belongs to another buyer")
	}
	return o, nil
}

func (s *Service) cacheConfirmation(ctx context.Context, paymentID, orderID string) {
	if s.Redis == nil {
		return
	}
	idemKey := fmt.Sprintf(redisx.KeyIdemCheckout, paymentID)
	_ = s.Redis.Set(ctx, idemKey, orderID, redisx.TTLIdempotency).Err()
}

// Transition drives the order status state machine. actorSellerID restricts
// the change to that seller's own orders; empty means an admin actor.
// Requesting the current status is a successful no-op.
func (s *Service) Transition(ctx context.Context, orderID, statusStr, actorSellerID string) (*Order, error) {
	to, ok := ParseStatus(statusStr)
	if !ok {
		return nil, errf(KindValidation, "invalid status %q", statusStr)
	}

	o, err := s.Store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errf(KindNotFound, "order not found")
	}
	if actorSellerID != "" && o.SellerID != actorSellerID {
		return nil, errf(KindForbidden, "order belongs to another seller")
	}
	if o.Status == to {
		return o, nil
	}

	// Inventory follows the status: entering canceled returns the items to
	// the shelf, leaving canceled takes them back (guarded), anything else
	// touches only the status field. Reactivation re-checks stock
	// sufficiency only.
	var deltas []StockDelta
	switch {
	case to == StatusCanceled:
		deltas = deltasFor(o.Items, +1)
	case o.Status == StatusCanceled:
		deltas = deltasFor(o.Items, -1)
	}

	if err := s.Store.TransitionStatus(ctx, orderID, o.Status, to, deltas); err != nil {
		switch {
		case errors.Is(err, ErrInsufficientStock):
			return nil, errf(KindInsufficientStock, "insufficient stock to reactivate order")
		case errors.Is(err, ErrStatusConflict):
			return nil, errf(KindConflict, "order status changed concurrently, retry")
		}
		return nil, err
	}

	prev := o.Status
	o.Status = to
	o.UpdatedAt = time.Now()

	if s.Notifier != nil {
		s.Notifier.Email(ctx, o.ID, notify.EmailRequestedPayload{
			Recipient: notify.Recipient{Kind: notify.KindBuyer, ID: o.OrderBy},
			Template:  notify.TemplateOrderStatusChanged,
			Data: map[string]any{
				"orderId":    o.ID,
				"fromStatus": string(prev),
				"toStatus":   string(to),
			},
		})
	}
	return o, nil
}

type ListParams struct {
	Page       int
	Limit      int
	Status     string
	OrderID    string
	DateFilter string
}

// List pages through orders. buyerID/sellerID scope the result to one
// principal; both empty is the admin view.
func (s *Service) List(ctx context.Context, p ListParams, buyerID, sellerID string) ([]*Order, int, error) {
	f := Filter{
		BuyerID:  buyerID,
		SellerID: sellerID,
		OrderID:  p.OrderID,
		Page:     p.Page,
		Limit:    p.Limit,
	}
	if p.Status != "" {
		st, ok := ParseStatus(p.Status)
		if !ok {
			return nil, 0, errf(KindValidation, "invalid status %q", p.Status)
		}
		f.Status = st
	}
	from, to, err := dateRange(p.DateFilter, time.Now())
	if err != nil {
		return nil, 0, err
	}
	f.From, f.To = from, to

	return s.Store.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.Store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errf(KindNotFound, "order not found")
	}
	return o, nil
}

// DeleteOrder is the destructive admin escape hatch: it removes the order
// without reverting inventory.
func (s *Service) DeleteOrder(ctx context.Context, orderID string) error {
	ok, err := s.Store.Delete(ctx, orderID)
	if err != nil {
		return err
	}
	if !ok {
		return errf(KindNotFound, "order not found")
	}
	return nil
}

// validateAndPrice runs the shared placement checks: shape of the request,
// variant existence, effective pricing, single-seller rule. It returns the
// captured line items, the resolved seller and the order total.
func (s *Service) validateAndPrice(ctx context.Context, items []ItemInput, addr ShippingAddress) ([]OrderItem, string, int64, error) {
	if len(items) == 0 {
		return nil, "", 0, errf(KindValidation, "order items are required")
	}
	if addr.Street == "" || addr.City == "" || addr.State == "" || addr.Country == "" {
		return nil, "", 0, errf(KindValidation, "shipping address requires street, city, state and country")
	}

	var (
		out      = make([]OrderItem, 0, len(items))
		sellerID string
		total    int64
	)
	for _, in := range items {
		if in.Qty < 1 {
			return nil, "", 0, errf(KindValidation, "quantity must be at least 1")
		}
		v, err := s.Catalog.GetVariant(ctx, in.ProductID, in.VariantID)
		if err != nil {
			return nil, "", 0, err
		}
		if v == nil {
			return nil, "", 0, errf(KindNotFound, "product %s variant %s not found", in.ProductID, in.VariantID)
		}
		price := v.EffectivePriceCents()
		if price <= 0 {
			return nil, "", 0, errf(KindValidation, "variant %s has no sellable price", in.VariantID)
		}
		if sellerID == "" {
			sellerID = v.SellerID
		} else if v.SellerID != sellerID {
			return nil, "", 0, errf(KindValidation, "all order items must belong to the same seller")
		}

		out = append(out, OrderItem{
			ProductID:  in.ProductID,
			VariantID:  in.VariantID,
			Name:       v.ProductName,
			Size:       v.Size,
			Color:      v.Color,
			Image:      v.Image,
			Qty:        in.Qty,
			PriceCents: price,
		})
		total += price * int64(in.Qty)
	}
	return out, sellerID, total, nil
}

func (s *Service) notifyPlaced(ctx context.Context, o *Order) {
	if s.Notifier == nil {
		return
	}
	data := map[string]any{
		"orderId":     o.ID,
		"totalAmount": o.TotalCents,
		"itemCount":   len(o.Items),
	}
	s.Notifier.Email(ctx, o.ID, notify.EmailRequestedPayload{
		Recipient: notify.Recipient{Kind: notify.KindSeller, ID: o.SellerID},
		Template:  notify.TemplateOrderPlacedSeller,
		Data:      data,
	})
	s.Notifier.Email(ctx, o.ID, notify.EmailRequestedPayload{
		Recipient: notify.Recipient{Kind: notify.KindBuyer, ID: o.OrderBy},
		Template:  notify.TemplateOrderConfirmation,
		Data:      data,
	})
}

// dateRange maps the dateFilter query values onto a [from, to) window.
func dateRange(filter string, now time.Time) (time.Time, time.Time, error) {
	var zero time.Time
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch filter {
	case "":
		return zero, zero, nil
	case "thisWeek":
		// week starts Monday
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset), zero, nil
	case "thisMonth":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), zero, nil
	case "lastMonth":
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return first.AddDate(0, -1, 0), first, nil
	}
	return zero, zero, errf(KindValidation, "invalid dateFilter %q", filter)
}
