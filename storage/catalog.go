package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/loganlanou/quickview/internal/catalog"
	"github.com/loganlanou/quickview/internal/variants"
	"github.com/oklog/ulid/v2"
)

// MaxOptions is the number of option columns a variant row has.
const MaxOptions = 3

// Product implements catalog.Source.
func (s *Storage) Product(ctx context.Context, handle string) (*variants.Product, error) {
	var id string
	product := &variants.Product{Handle: handle}

	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, url FROM products WHERE handle = ?`, handle,
	).Scan(&id, &product.Title, &product.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", handle, err)
	}

	options, err := s.productOptions(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Options = options

	vs, err := s.productVariants(ctx, id, len(options))
	if err != nil {
		return nil, err
	}
	product.Variants = vs

	return product, nil
}

func (s *Storage) productOptions(ctx context.Context, productID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM product_options WHERE product_id = ? ORDER BY position`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product options: %w", err)
	}
	defer rows.Close()

	options := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan product option: %w", err)
		}
		options = append(options, name)
	}
	return options, rows.Err()
}

func (s *Storage) productVariants(ctx context.Context, productID string, numOptions int) ([]variants.Variant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, option1, option2, option3, price_cents, compare_at_price_cents, available
		FROM product_variants
		WHERE product_id = ?
		ORDER BY position, id`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product variants: %w", err)
	}
	defer rows.Close()

	var vs []variants.Variant
	for rows.Next() {
		var (
			v         variants.Variant
			opts      [MaxOptions]sql.NullString
			compareAt sql.NullInt64
		)
		if err := rows.Scan(&v.ID, &v.Title, &opts[0], &opts[1], &opts[2], &v.Price, &compareAt, &v.Available); err != nil {
			return nil, fmt.Errorf("failed to scan product variant: %w", err)
		}

		v.Options = make([]string, 0, numOptions)
		for i := 0; i < numOptions && i < MaxOptions; i++ {
			v.Options = append(v.Options, opts[i].String)
		}
		if compareAt.Valid {
			n := compareAt.Int64
			v.CompareAtPrice = &n
		}
		vs = append(vs, v)
	}
	return vs, rows.Err()
}

// Seed writes products into the catalog in one transaction. Existing
// products with the same handle are replaced.
func (s *Storage) Seed(ctx context.Context, products []variants.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range products {
		if err := seedProduct(ctx, tx, p); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.Handle, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog seed: %w", err)
	}
	return nil
}

func seedProduct(ctx context.Context, tx *sql.Tx, p variants.Product) error {
	if p.Handle == "" {
		return errors.New("handle is required")
	}
	if len(p.Options) > MaxOptions {
		return fmt.Errorf("%d options, at most %d supported", len(p.Options), MaxOptions)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE handle = ?`, p.Handle); err != nil {
		return fmt.Errorf("failed to replace product: %w", err)
	}

	id := ulid.Make().String()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO products (id, handle, title, url) VALUES (?, ?, ?, ?)`,
		id, p.Handle, p.Title, p.URL,
	); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	for i, name := range p.Options {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_options (product_id, position, name) VALUES (?, ?, ?)`,
			id, i, name,
		); err != nil {
			return fmt.Errorf("failed to insert option %s: %w", name, err)
		}
	}

	for i, v := range p.Variants {
		if len(v.Options) != len(p.Options) {
			return fmt.Errorf("variant %d has %d options, product has %d", v.ID, len(v.Options), len(p.Options))
		}

		var opts [MaxOptions]sql.NullString
		for j, value := range v.Options {
			opts[j] = sql.NullString{String: value, Valid: true}
		}
		var compareAt sql.NullInt64
		if v.CompareAtPrice != nil {
			compareAt = sql.NullInt64{Int64: *v.CompareAtPrice, Valid: true}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product_variants
				(id, product_id, position, title, option1, option2, option3, price_cents, compare_at_price_cents, available)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			v.ID, id, i, v.Title, opts[0], opts[1], opts[2], v.Price, compareAt, v.Available,
		); err != nil {
			return fmt.Errorf("failed to insert variant %d: %w", v.ID, err)
		}
	}

	return nil
}

// Handles lists product handles in insertion order.
func (s *Storage) Handles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT handle FROM products ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("failed to scan product handle: %w", err)
		}
		handles = append(handles, h)
	}
	return handles, rows.Err()
}
