package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"riparo-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ListFilter narrows List/Count results. TechnicianID and Unassigned are
// mutually exclusive; the service guarantees that.
type ListFilter struct {
	Status       *Status
	TechnicianID *string
	Unassigned   bool
}

type Repository interface {
	// Create inserts the order and its first history entry in one
	// transaction. Returns ErrNumberTaken on an order-number collision.
	Create(ctx context.Context, o *Order, first *StatusHistoryEntry) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*Order, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Order, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	// Update writes the mutated order and optionally appends a history entry,
	// atomically, guarded by an optimistic check on the previous updatedAt.
	// Returns ErrStaleOrder when a concurrent writer won the race.
	Update(ctx context.Context, o *Order, expectedUpdatedAt time.Time, entry *StatusHistoryEntry) error
	History(ctx context.Context, orderID string) ([]*StatusHistoryEntry, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const uniqueViolation = "23505"

func (r *repository) Create(ctx context.Context, o *Order, first *StatusHistoryEntry) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("order_number", o.OrderNumber),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_number, customer_id,
			device_brand, device_model, device_imei,
			issue_description, status, priority,
			estimated_cost, technician_id, notes,
			created_at, updated_at, estimated_completion
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		o.ID, o.OrderNumber, o.CustomerID,
		o.DeviceBrand, o.DeviceModel, o.DeviceIMEI,
		o.IssueDescription, o.Status, o.Priority,
		o.EstimatedCost, o.TechnicianID, o.Notes,
		o.CreatedAt, o.UpdatedAt, o.EstimatedCompletion,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrNumberTaken
		}
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	if err := insertHistory(ctx, tx, first); err != nil {
		log.Error("failed to insert initial history entry", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	log.Info("order created")
	return nil
}

const orderColumns = `
	id, order_number, customer_id,
	device_brand, device_model, device_imei,
	issue_description, status, priority,
	estimated_cost, final_cost, technician_id, notes,
	created_at, updated_at, estimated_completion, actual_completion
`

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	return scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

func (r *repository) GetByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	return scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, orderNumber))
}

func (r *repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	argIndex := 1

	query, args, argIndex = applyFilter(query, args, argIndex, filter)

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrderRows(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *repository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM orders WHERE 1=1`
	args := []any{}
	query, args, _ = applyFilter(query, args, 1, filter)

	var total int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&total)
	return total, err
}

func applyFilter(query string, args []any, argIndex int, filter ListFilter) (string, []any, int) {
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.TechnicianID != nil {
		query += fmt.Sprintf(" AND technician_id = $%d", argIndex)
		args = append(args, *filter.TechnicianID)
		argIndex++
	} else if filter.Unassigned {
		query += " AND technician_id IS NULL"
	}
	return query, args, argIndex
}

func (r *repository) Update(ctx context.Context, o *Order, expectedUpdatedAt time.Time, entry *StatusHistoryEntry) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Update"),
		zap.String("order_id", o.ID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET
			status = $1,
			priority = $2,
			estimated_cost = $3,
			final_cost = $4,
			technician_id = $5,
			notes = $6,
			updated_at = $7,
			estimated_completion = $8,
			actual_completion = $9
		WHERE id = $10 AND updated_at = $11
	`,
		o.Status, o.Priority, o.EstimatedCost, o.FinalCost,
		o.TechnicianID, o.Notes, o.UpdatedAt,
		o.EstimatedCompletion, o.ActualCompletion,
		o.ID, expectedUpdatedAt,
	)
	if err != nil {
		log.Error("failed to update order", zap.Error(err))
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, o.ID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrOrderNotFound
		}
		return ErrStaleOrder
	}

	if entry != nil {
		if err := insertHistory(ctx, tx, entry); err != nil {
			log.Error("failed to insert history entry", zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (r *repository) History(ctx context.Context, orderID string) ([]*StatusHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, status, notes, changed_by, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at DESC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*StatusHistoryEntry
	for rows.Next() {
		var e StatusHistoryEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.Notes, &e.ChangedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func insertHistory(ctx context.Context, tx *sql.Tx, e *StatusHistoryEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_history (id, order_id, status, notes, changed_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, e.ID, e.OrderID, e.Status, e.Notes, e.ChangedBy, e.CreatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInto(s rowScanner, o *Order) error {
	return s.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerID,
		&o.DeviceBrand, &o.DeviceModel, &o.DeviceIMEI,
		&o.IssueDescription, &o.Status, &o.Priority,
		&o.EstimatedCost, &o.FinalCost, &o.TechnicianID, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt, &o.EstimatedCompletion, &o.ActualCompletion,
	)
}

func scanOrder(row *sql.Row) (*Order, error) {
	var o Order
	err := scanInto(row, &o)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrderRows(rows *sql.Rows) (*Order, error) {
	var o Order
	if err := scanInto(rows, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
