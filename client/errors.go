package client

import "github.com/iov-one/crowdfund/errors"

var (
	// ErrNetwork is returned when the node cannot be reached or responds
	// with a transport failure.
	ErrNetwork = errors.Register(40, "network")

	// ErrTimeout is returned when a result was not received before the
	// context was cancelled.
	ErrTimeout = errors.Register(41, "timeout")
)
