package order

import "errors"

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrProductNotFound         = errors.New("product not found")
	ErrEmptyOrder              = errors.New("no order items")
	ErrInvalidQuantity         = errors.New("order item quantity must be greater than zero")
	ErrSlotsExhausted          = errors.New("not enough slots available")
	ErrOrderNotPaid            = errors.New("order is not paid")
	ErrAlreadyPaid             = errors.New("order is already paid")
	ErrAlreadyDelivered        = errors.New("order is already delivered")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)
