package customer

import "time"

// Customer is a shared, independently-lifetimed entity referenced by orders.
// Phone acts as the de-duplication key on creation.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	Email     *string
	Address   *string
	CreatedAt time.Time
}
