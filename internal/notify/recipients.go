package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Contact struct {
	Email string
	Name  string
}

// ResolveFunc turns a recipient id into a deliverable contact.
type ResolveFunc func(ctx context.Context, id string) (*Contact, error)

// Resolver dispatches on the recipient kind through an explicit lookup
// table: each kind maps to the directory it resolves against.
type Resolver struct {
	byKind map[RecipientKind]ResolveFunc
}

func NewResolver(db *pgxpool.Pool) *Resolver {
	return &Resolver{byKind: map[RecipientKind]ResolveFunc{
		KindBuyer: func(ctx context.Context, id string) (*Contact, error) {
			return scanContact(db.QueryRow(ctx, `SELECT email, name FROM buyers WHERE id = $1`, id))
		},
		KindSeller: func(ctx context.Context, id string) (*Contact, error) {
			return scanContact(db.QueryRow(ctx, `SELECT email, brand_name FROM sellers WHERE id = $1`, id))
		},
	}}
}

func (r *Resolver) Resolve(ctx context.Context, rec Recipient) (*Contact, error) {
	fn, ok := r.byKind[rec.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown recipient kind %q", rec.Kind)
	}
	return fn(ctx, rec.ID)
}

func scanContact(row pgx.Row) (*Contact, error) {
	var c Contact
	err := row.Scan(&c.Email, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
