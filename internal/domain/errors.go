package domain

import "errors"

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMissingSKU        = errors.New("missing SKU")
	ErrDuplicateSKU      = errors.New("SKU assigned more than once")
	ErrSKUMismatch       = errors.New("SKU does not belong to product")
	ErrSKUUnavailable    = errors.New("SKU not available")
	ErrInvalidItem       = errors.New("invalid line item")
	ErrNoItems           = errors.New("order must have at least one item")
	ErrInvalidAmount     = errors.New("amount must not be negative")
	ErrNegativeTotal     = errors.New("discount exceeds subtotal plus shipping")
	ErrInvalidPayment    = errors.New("invalid payment")
	ErrUnknownFlag       = errors.New("unknown product flag")
	ErrInvalidState      = errors.New("invalid state")
)
