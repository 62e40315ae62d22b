// Package errors provides custom error types for order operations.
package errors

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrAccessDenied      = errors.New("order belongs to another user")
	ErrInsufficientStock = errors.New("insufficient product stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrOptimisticLock    = errors.New("order was modified concurrently")
)
