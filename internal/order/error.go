package order

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrNumberTaken signals an order-number collision against the
	// repository uniqueness constraint; creation retries generation.
	ErrNumberTaken = errors.New("order number already taken")
	// ErrStaleOrder signals an optimistic-concurrency failure: the order was
	// modified between read and write.
	ErrStaleOrder = errors.New("order was modified concurrently")
)
