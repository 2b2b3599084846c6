package user

import (
	"context"
	"database/sql"
	"errors"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// PromoteToTechnician flips the user's role once a technician profile
	// exists for them.
	PromoteToTechnician(ctx context.Context, userID string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Email, u.PasswordHash, u.FullName, u.Phone, u.Role)
	return err
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.password_hash, u.full_name, u.phone, u.role, t.id, u.created_at
		FROM users u
		LEFT JOIN technicians t ON t.user_id = u.id
		WHERE u.email = $1
	`, email))
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.password_hash, u.full_name, u.phone, u.role, t.id, u.created_at
		FROM users u
		LEFT JOIN technicians t ON t.user_id = u.id
		WHERE u.id = $1
	`, id))
}

func (r *repository) PromoteToTechnician(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET role = 'TECHNICIAN' WHERE id = $1
	`, userID)
	return err
}

func (r *repository) scanOne(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Role, &u.TechnicianID, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
