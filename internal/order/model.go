package order

import "time"

// Status is the single canonical workflow vocabulary. Every module uses this
// enum; there is no second status set anywhere in the system.
type Status string

const (
	StatusReceived    Status = "RECEIVED"
	StatusDiagnosing  Status = "DIAGNOSING"
	StatusRepairing   Status = "REPAIRING"
	StatusTesting     Status = "TESTING"
	StatusCompleted   Status = "COMPLETED"
	StatusReadyPickup Status = "READY_PICKUP"
	StatusDelivered   Status = "DELIVERED"
	StatusCancelled   Status = "CANCELLED"
)

// next is the canonical forward flow. CANCELLED is reachable from any
// non-terminal state and therefore not part of this table.
var next = map[Status]Status{
	StatusReceived:    StatusDiagnosing,
	StatusDiagnosing:  StatusRepairing,
	StatusRepairing:   StatusTesting,
	StatusTesting:     StatusCompleted,
	StatusCompleted:   StatusReadyPickup,
	StatusReadyPickup: StatusDelivered,
}

func (s Status) Valid() bool {
	if s == StatusCancelled || s == StatusDelivered {
		return true
	}
	_, ok := next[s]
	return ok
}

// Terminal reports whether the status has no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether from→to is a legal move: the immediate next
// state in the canonical flow, or CANCELLED from any non-terminal state.
// Backward moves and stage skips are never legal, for administrators included.
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return next[from] == to
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Order is a single repair job tracked from intake to delivery.
type Order struct {
	ID          string
	OrderNumber string
	CustomerID  string

	DeviceBrand string
	DeviceModel string
	DeviceIMEI  *string

	IssueDescription string
	Status           Status
	Priority         Priority

	EstimatedCost *float64
	FinalCost     *float64

	TechnicianID *string
	Notes        *string

	CreatedAt           time.Time
	UpdatedAt           time.Time
	EstimatedCompletion *time.Time
	ActualCompletion    *time.Time
}

// Assigned reports whether a technician currently holds the order.
func (o *Order) Assigned() bool { return o.TechnicianID != nil }

// StatusHistoryEntry is an append-only audit record. Entries are created by
// the workflow engine on every accepted transition and on technician
// assignment; they are never mutated or deleted while the order exists.
type StatusHistoryEntry struct {
	ID        string
	OrderID   string
	Status    Status
	Notes     *string
	ChangedBy string
	CreatedAt time.Time
}
