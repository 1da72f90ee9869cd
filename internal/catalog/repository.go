package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	Product(ctx context.Context, id int) (Product, error)
	Products(ctx context.Context) ([]Product, error)
	Stock(ctx context.Context, productID int) (Stock, error)
	SetStock(ctx context.Context, productID, amount int) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Product(ctx context.Context, id int) (Product, error) {
	var (
		p     Product
		price string
	)
	row := r.pool.QueryRow(ctx, `SELECT id, title, price::text, image_url FROM catalog_products WHERE id=$1`, id)
	if err := row.Scan(&p.ID, &p.Title, &price, &p.ImageURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, errors.Wrapf(err, "select product %d", id)
	}

	d, err := decimal.NewFromString(price)
	if err != nil {
		return Product{}, errors.Wrapf(err, "product %d price", id)
	}
	p.Price = d
	return p, nil
}

func (r *PostgresRepository) Products(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, price::text, image_url FROM catalog_products ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "select products")
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		var (
			p     Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Title, &price, &p.ImageURL); err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, errors.Wrapf(err, "product %d price", p.ID)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate products")
	}
	return out, nil
}

func (r *PostgresRepository) Stock(ctx context.Context, productID int) (Stock, error) {
	var s Stock
	row := r.pool.QueryRow(ctx, `SELECT product_id, amount FROM catalog_stock WHERE product_id=$1`, productID)
	if err := row.Scan(&s.ProductID, &s.Amount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Stock{}, ErrNotFound
		}
		return Stock{}, errors.Wrapf(err, "select stock %d", productID)
	}
	return s, nil
}

func (r *PostgresRepository) SetStock(ctx context.Context, productID, amount int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO catalog_stock(product_id, amount)
		VALUES($1, $2)
		ON CONFLICT (product_id) DO UPDATE SET amount=EXCLUDED.amount, updated_at=now()
	`, productID, amount)
	if err != nil {
		return errors.Wrapf(err, "upsert stock %d", productID)
	}
	return nil
}

// Seed loads a fixture into empty tables; existing rows are left alone.
func (r *PostgresRepository) Seed(ctx context.Context, f Fixture) error {
	for _, p := range f.Products {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO catalog_products(id, title, price, image_url)
			VALUES($1, $2, $3::numeric, $4)
			ON CONFLICT (id) DO NOTHING
		`, p.ID, p.Title, p.Price.String(), p.ImageURL)
		if err != nil {
			return errors.Wrapf(err, "seed product %d", p.ID)
		}
	}
	for _, s := range f.Stock {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO catalog_stock(product_id, amount)
			VALUES($1, $2)
			ON CONFLICT (product_id) DO NOTHING
		`, s.ProductID, s.Amount)
		if err != nil {
			return errors.Wrapf(err, "seed stock %d", s.ProductID)
		}
	}
	return nil
}
