// Package errors provides custom error types for media operations.
package errors

import "errors"

var (
	// ErrUnknownLocator means the locator does not belong to the configured
	// storage namespace. Such requests never reach the network.
	ErrUnknownLocator = errors.New("locator is outside the storage namespace")

	// ErrObjectNotFound means the storage provider has no object for the locator.
	ErrObjectNotFound = errors.New("remote object not found")

	// ErrFetchFailed covers authentication, resolution and download failures.
	ErrFetchFailed = errors.New("remote image fetch failed")
)
