package app

import "github.com/iov-one/crowdfund/errors"

// ErrNoSuchPath is returned when a transaction carries a message that no
// handler was registered for.
var ErrNoSuchPath = errors.Register(30, "path not registered")
