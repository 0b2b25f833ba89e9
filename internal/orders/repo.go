package orders

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrInsufficientStock: a conditional stock decrement matched zero rows.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStatusConflict: the order's status changed between read and write.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

type Repo struct{ DB *pgxpool.Pool }

// Create inserts the order, its items and applies the inventory deltas in a
// single transaction. Any delta that would drive a variant's stock negative
// aborts the whole thing: no order, no partial stock mutation.
func (r *Repo) Create(ctx context.Context, o *Order, deltas []StockDelta) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var txID *string
	if o.Payment != nil {
		txID = &o.Payment.TransactionID
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO orders(id, order_by, seller_id, status, total_cents, payment_method,
		                   transaction_id, ship_street, ship_city, ship_state, ship_country, ship_postal_code)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at, updated_at`,
		o.ID, o.OrderBy, o.SellerID, o.Status, o.TotalCents, o.PaymentMethod,
		txID, o.Shipping.Street, o.Shipping.City, o.Shipping.State, o.Shipping.Country, o.Shipping.PostalCode)
	if err := row.Scan(&o.CreatedAt, &o.UpdatedAt); err != nil {
		return err
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, variant_id, name, size, color, image, qty, price_cents)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			o.ID, it.ProductID, it.VariantID, it.Name, it.Size, it.Color, it.Image, it.Qty, it.PriceCents); err != nil {
			return err
		}
	}

	if err := applyDeltas(ctx, tx, deltas); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// TransitionStatus writes the new status and the accompanying inventory
// deltas in one transaction. The write is compare-and-swapped against the
// status the caller read so concurrent transitions on one order linearize.
func (r *Repo) TransitionStatus(ctx context.Context, orderID string, from, to Status, deltas []StockDelta) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE orders SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`, orderID, from, to)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrStatusConflict
	}

	if err := applyDeltas(ctx, tx, deltas); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// applyDeltas mutates the stock ledger with signed conditional updates keyed
// by (product_id, variant_id). Guarding the decrement inside the UPDATE
// (rather than a prior read) is what closes the check-then-decrement race.
func applyDeltas(ctx context.Context, tx pgx.Tx, deltas []StockDelta) error {
	for _, d := range deltas {
		ct, err := tx.Exec(ctx, `
			UPDATE variants SET stock = stock + $3
			WHERE product_id = $1 AND variant_id = $2 AND stock + $3 >= 0`,
			d.ProductID, d.VariantID, d.Stock)
		if err != nil {
			return err
		}
		if ct.RowsAffected() != 1 {
			return ErrInsufficientStock
		}
		if _, err := tx.Exec(ctx, `
			UPDATE products SET sold = sold + $2, count_in_stock = count_in_stock + $3, updated_at = now()
			WHERE id = $1`, d.ProductID, d.Sold, d.CountInStock); err != nil {
			return err
		}
	}
	return nil
}

// FindByTransactionID looks an order up by the payment provider's payment id.
// Returns (nil, nil) when no order references it yet.
func (r *Repo) FindByTransactionID(ctx context.Context, transactionID string) (*Order, error) {
	o, err := r.scanOne(ctx, `WHERE transaction_id = $1`, transactionID)
	if err != nil || o == nil {
		return nil, err
	}
	return o, r.loadItems(ctx, o)
}

func (r *Repo) GetByID(ctx context.Context, orderID string) (*Order, error) {
	o, err := r.scanOne(ctx, `WHERE id = $1`, orderID)
	if err != nil || o == nil {
		return nil, err
	}
	return o, r.loadItems(ctx, o)
}

// Delete permanently removes an order and its items. This is the admin
// escape hatch: it does NOT revert inventory.
func (r *Repo) Delete(ctx context.Context, orderID string) (bool, error) {
	ct, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

const orderColumns = `id, order_by, seller_id, status, total_cents, payment_method, transaction_id,
	ship_street, ship_city, ship_state, ship_country, ship_postal_code, created_at, updated_at`

func (r *Repo) scanOne(ctx context.Context, where string, args ...any) (*Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanOrder(rows)
}

func scanOrder(rows pgx.Rows) (*Order, error) {
	var o Order
	var txID *string
	if err := rows.Scan(&o.ID, &o.OrderBy, &o.SellerID, &o.Status, &o.TotalCents, &o.PaymentMethod, &txID,
		&o.Shipping.Street, &o.Shipping.City, &o.Shipping.State, &o.Shipping.Country, &o.Shipping.PostalCode,
		&o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if txID != nil {
		o.Payment = &PaymentDetails{TransactionID: *txID}
	}
	return &o, nil
}

func (r *Repo) loadItems(ctx context.Context, os ...*Order) error {
	ids := make([]string, 0, len(os))
	byID := make(map[string]*Order, len(os))
	for _, o := range os {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}
	rows, err := r.DB.Query(ctx, `
		SELECT order_id, product_id, variant_id, name, size, color, image, qty, price_cents
		FROM order_items WHERE order_id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var orderID string
		var it OrderItem
		if err := rows.Scan(&orderID, &it.ProductID, &it.VariantID, &it.Name, &it.Size,
			&it.Color, &it.Image, &it.Qty, &it.PriceCents); err != nil {
			return err
		}
		o := byID[orderID]
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

// Filter narrows List results. Zero values mean "no constraint"; From/To are
// a half-open [From, To) window on created_at.
type Filter struct {
	BuyerID  string
	SellerID string
	Status   Status
	OrderID  string
	From     time.Time
	To       time.Time
	Page     int
	Limit    int
}

// List returns one page of orders (newest first) plus the total match count.
func (r *Repo) List(ctx context.Context, f Filter) ([]*Order, int, error) {
	where, args := f.clauses()

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	args = append(args, limit, (page-1)*limit)
	q := `SELECT ` + orderColumns + ` FROM orders ` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(out) > 0 {
		if err := r.loadItems(ctx, out...); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func (f Filter) clauses() (string, []any) {
	where := ""
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		if where == "" {
			where = "WHERE "
		} else {
			where += " AND "
		}
		where += cond + "$" + strconv.Itoa(len(args))
	}
	if f.BuyerID != "" {
		add("order_by = ", f.BuyerID)
	}
	if f.SellerID != "" {
		add("seller_id = ", f.SellerID)
	}
	if f.Status != "" {
		add("status = ", f.Status)
	}
	if f.OrderID != "" {
		add("id = ", f.OrderID)
	}
	if !f.From.IsZero() {
		add("created_at >= ", f.From)
	}
	if !f.To.IsZero() {
		add("created_at < ", f.To)
	}
	return where, args
}
