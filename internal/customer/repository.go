package customer

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

type Repository interface {
	FindByPhoneOrEmail(ctx context.Context, phone string, email *string) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id string) (*Customer, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByPhoneOrEmail(ctx context.Context, phone string, email *string) (*Customer, error) {
	query := `
		SELECT id, name, phone, email, address, created_at
		FROM customers
		WHERE phone = $1 OR ($2::text IS NOT NULL AND email = $2)
		LIMIT 1
	`
	var c Customer
	err := r.db.QueryRowContext(ctx, query, phone, email).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, c *Customer) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO customers (id, name, phone, email, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, c.ID, c.Name, c.Phone, c.Email, c.Address).Scan(&c.CreatedAt)
}

func (r *repository) GetByID(ctx context.Context, id string) (*Customer, error) {
	var c Customer
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, phone, email, address, created_at
		FROM customers WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
