package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"riparo-be/internal/apperror"
	"riparo-be/internal/logger"
	"riparo-be/internal/metrics"
	"riparo-be/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine validates and applies status transitions and technician assignment.
// Every accepted mutation is one atomic read-modify-write against the
// repository and appends exactly one history entry.
//
// Policy decisions (see DESIGN.md): re-requesting the current status is a
// no-op success without a history row; assignment and status transition are
// independent operations; technicians claim unassigned orders through Assign,
// not through Transition.
type Engine struct {
	repo Repository
	now  func() time.Time
}

func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo, now: time.Now}
}

// Transition moves the order to the requested status on behalf of the actor.
func (e *Engine) Transition(ctx context.Context, orderID string, to Status, actor user.Actor, notes *string) (*Order, error) {
	if !to.Valid() {
		return nil, apperror.Validation("invalid_status", fmt.Sprintf("unknown status %q", to))
	}

	o, err := e.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperror.FromRepository(err)
	}
	if o == nil {
		return nil, apperror.NotFound("order_not_found", "order not found")
	}

	if err := authorizeTransition(o, actor); err != nil {
		return nil, err
	}

	// Confirming the current status is treated as a no-op write.
	if o.Status == to {
		return o, nil
	}

	if !CanTransition(o.Status, to) {
		return nil, apperror.InvalidTransition(
			fmt.Sprintf("cannot move order from %s to %s", o.Status, to))
	}

	from := o.Status
	now := e.now()

	o.Status = to
	prevUpdatedAt := o.UpdatedAt
	o.UpdatedAt = now
	if to == StatusCompleted && o.ActualCompletion == nil {
		o.ActualCompletion = &now
	}

	entry := &StatusHistoryEntry{
		ID:        uuid.NewString(),
		OrderID:   o.ID,
		Status:    to,
		Notes:     notes,
		ChangedBy: actor.UserID,
		CreatedAt: now,
	}
	if entry.Notes == nil {
		text := fmt.Sprintf("状态更新为 %s", to)
		entry.Notes = &text
	}

	if err := e.repo.Update(ctx, o, prevUpdatedAt, entry); err != nil {
		return nil, mapWriteError(err)
	}

	metrics.OrderTransitions.WithLabelValues(string(from), string(to)).Inc()
	logger.FromCtx(ctx).Info("order status changed",
		zap.String("order_id", o.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("changed_by", actor.UserID),
	)
	return o, nil
}

// Assign sets the order's technician on behalf of the actor. Capacity policy
// is enforced by the order service before this call.
func (e *Engine) Assign(ctx context.Context, orderID, technicianID string, actor user.Actor) (*Order, error) {
	o, err := e.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperror.FromRepository(err)
	}
	if o == nil {
		return nil, apperror.NotFound("order_not_found", "order not found")
	}

	switch {
	case actor.IsAdmin():
		// admins may assign or reassign any technician at any time
	case actor.IsTechnician():
		if !actor.OwnsTechnician(technicianID) {
			return nil, apperror.Forbidden("self_assign_only", "technicians may only assign themselves")
		}
		if o.Assigned() {
			return nil, apperror.Forbidden("already_assigned", "order already has a technician")
		}
	default:
		return nil, apperror.Forbidden("no_assign_rights", "customers may not assign technicians")
	}

	if o.TechnicianID != nil && *o.TechnicianID == technicianID {
		return o, nil
	}

	now := e.now()
	prevUpdatedAt := o.UpdatedAt
	o.TechnicianID = &technicianID
	o.UpdatedAt = now

	note := "技术员已分配"
	entry := &StatusHistoryEntry{
		ID:        uuid.NewString(),
		OrderID:   o.ID,
		Status:    o.Status,
		Notes:     &note,
		ChangedBy: actor.UserID,
		CreatedAt: now,
	}

	if err := e.repo.Update(ctx, o, prevUpdatedAt, entry); err != nil {
		return nil, mapWriteError(err)
	}

	logger.FromCtx(ctx).Info("technician assigned",
		zap.String("order_id", o.ID),
		zap.String("technician_id", technicianID),
		zap.String("changed_by", actor.UserID),
	)
	return o, nil
}

func authorizeTransition(o *Order, actor user.Actor) error {
	switch {
	case actor.IsAdmin():
		return nil
	case actor.IsTechnician():
		if o.Assigned() && actor.OwnsTechnician(*o.TechnicianID) {
			return nil
		}
		return apperror.Forbidden("not_your_order", "technicians may only update their own orders")
	default:
		return apperror.Forbidden("read_only", "customers may not change order status")
	}
}

func mapWriteError(err error) error {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return apperror.NotFound("order_not_found", "order not found")
	case errors.Is(err, ErrStaleOrder):
		return apperror.Conflict("stale_order", "order was modified concurrently, retry")
	default:
		return apperror.FromRepository(err)
	}
}
