package redisx

import "time"

const (
	// Idempotent checkout confirmation: idem:checkout:{payment_id} -> order_id
	KeyIdemCheckout = "idem:checkout:%s"

	// Cache order payload for GETs: order:{order_id} -> order JSON
	KeyOrder = "order:%s"

	// Dedup notification delivery: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLOrderCache  = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
