package technician

import "time"

// Technician is a staff actor who performs repairs. MaxOrdersLimit bounds how
// many non-terminal orders may be concurrently assigned; nil means unlimited.
type Technician struct {
	ID             string
	UserID         string
	FullName       string
	Specialization *string
	MaxOrdersLimit *int
	CreatedAt      time.Time
}

// WithActiveCount pairs a technician with its current non-terminal order count.
type WithActiveCount struct {
	Technician
	ActiveOrders int
}
