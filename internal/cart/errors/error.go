// Package errors provides custom error types for cart operations.
package errors

import "errors"

var ErrItemNotFound = errors.New("cart item not found")
