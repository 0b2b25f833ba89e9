package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// GetVariant fetches a single variant joined with its owning product.
// Returns (nil, nil) when either the product or the variant does not exist.
func (r *Repo) GetVariant(ctx context.Context, productID, variantID string) (*Variant, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT v.product_id, v.variant_id, v.size, v.color, v.image,
		       v.price_cents, v.discounted_cents, v.stock,
		       p.seller_id, p.name
		FROM variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.product_id = $1 AND v.variant_id = $2`, productID, variantID)

	var v Variant
	err := row.Scan(&v.ProductID, &v.VariantID, &v.Size, &v.Color, &v.Image,
		&v.PriceCents, &v.DiscountedCents, &v.Stock, &v.SellerID, &v.ProductName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repo) GetProduct(ctx context.Context, productID string) (*Product, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT id, seller_id, name, sold, count_in_stock, created_at, updated_at
		FROM products WHERE id = $1`, productID)

	var p Product
	err := row.Scan(&p.ID, &p.SellerID, &p.Name, &p.Sold, &p.CountInStock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT product_id, variant_id, size, color, image, price_cents, discounted_cents, stock
		FROM variants WHERE product_id = $1`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ProductID, &v.VariantID, &v.Size, &v.Color, &v.Image,
			&v.PriceCents, &v.DiscountedCents, &v.Stock); err != nil {
			return nil, err
		}
		p.Variants = append(p.Variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, seller_id, name, sold, count_in_stock, created_at, updated_at
		FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Name, &p.Sold, &p.CountInStock,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
