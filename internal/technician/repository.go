package technician

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, t *Technician) error
	GetByID(ctx context.Context, id string) (*Technician, error)
	GetByUserID(ctx context.Context, userID string) (*Technician, error)
	ListWithActiveCounts(ctx context.Context) ([]*WithActiveCount, error)
	CountActiveOrders(ctx context.Context, technicianID string) (int, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *Technician) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO technicians (id, user_id, full_name, specialization, max_orders_limit)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, t.ID, t.UserID, t.FullName, t.Specialization, t.MaxOrdersLimit).Scan(&t.CreatedAt)
}

func (r *repository) GetByID(ctx context.Context, id string) (*Technician, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, user_id, full_name, specialization, max_orders_limit, created_at
		FROM technicians WHERE id = $1
	`, id))
}

func (r *repository) GetByUserID(ctx context.Context, userID string) (*Technician, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, user_id, full_name, specialization, max_orders_limit, created_at
		FROM technicians WHERE user_id = $1
	`, userID))
}

func (r *repository) ListWithActiveCounts(ctx context.Context) ([]*WithActiveCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			t.id, t.user_id, t.full_name, t.specialization, t.max_orders_limit, t.created_at,
			COUNT(o.id) FILTER (
				WHERE o.status NOT IN ('DELIVERED', 'CANCELLED')
			) AS active_orders
		FROM technicians t
		LEFT JOIN orders o ON o.technician_id = t.id
		GROUP BY t.id
		ORDER BY t.full_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*WithActiveCount
	for rows.Next() {
		var t WithActiveCount
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.FullName, &t.Specialization, &t.MaxOrdersLimit, &t.CreatedAt,
			&t.ActiveOrders,
		); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *repository) CountActiveOrders(ctx context.Context, technicianID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders
		WHERE technician_id = $1
		  AND status NOT IN ('DELIVERED', 'CANCELLED')
	`, technicianID).Scan(&count)
	return count, err
}

func (r *repository) scanOne(row *sql.Row) (*Technician, error) {
	var t Technician
	err := row.Scan(&t.ID, &t.UserID, &t.FullName, &t.Specialization, &t.MaxOrdersLimit, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
