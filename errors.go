package dataaccess

import "errors"

var (
	// ErrContextNotInitialized is returned when a data access call runs on a
	// context that carries no connection string.
	ErrContextNotInitialized = errors.New("dataaccess: connection string not initialized for this request")

	// ErrCancelled marks failures that happened after the effective context
	// was cancelled. The firing source is also in the chain.
	ErrCancelled = errors.New("dataaccess: operation cancelled")

	// ErrRequestAborted is the cancellation cause when the host aborted the
	// request.
	ErrRequestAborted = errors.New("dataaccess: request aborted")

	// ErrCommandTimeout is the cancellation cause when the default timeout
	// elapsed.
	ErrCommandTimeout = errors.New("dataaccess: command timeout")
)
