package product

import "errors"

var (
	ErrNotFound        = errors.New("product not found")
	ErrAlreadyReviewed = errors.New("product already reviewed")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrNegativePrice   = errors.New("price cannot be negative")
	ErrNegativeSlots   = errors.New("slots available cannot be negative")
)
