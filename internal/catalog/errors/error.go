// Package errors provides custom error types for catalog operations.
package errors

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidPage means page or page size is not a positive number.
	ErrInvalidPage = errors.New("invalid pagination parameters")
	// ErrNoImages means a product create carried no attached images.
	ErrNoImages = errors.New("product must have at least one image")
)
