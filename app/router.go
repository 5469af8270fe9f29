package app

import (
	"fmt"
	"regexp"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

var isPath = regexp.MustCompile(`^[a-zA-Z0-9_/]+$`).MatchString

// Router allows us to register many handlers with different paths and then
// direct each message to the proper handler.
//
// Minimal interface modeled after net/http.ServeMux
type Router struct {
	routes map[string]crowdfund.Handler
}

var _ crowdfund.Registry = (*Router)(nil)
var _ crowdfund.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]crowdfund.Handler, 10),
	}
}

// Handle adds a new Handler for the given path. This function panics if a
// handler for given path is already registered.
func (r *Router) Handle(path string, h crowdfund.Handler) {
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this path. If no path is found,
// returns a noSuchPath Handler. This function never returns nil.
func (r *Router) handler(m crowdfund.Msg) crowdfund.Handler {
	path := m.Path()
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

// Check dispatches to the proper handler based on path
func (r *Router) Check(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "no message")
	}
	return r.handler(msg).Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on path
func (r *Router) Deliver(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "no message")
	}
	return r.handler(msg).Deliver(ctx, store, tx)
}

// notFoundHandler always returns ErrNoSuchPath error.
type notFoundHandler string

func (path notFoundHandler) Check(crowdfund.Context, crowdfund.KVStore, crowdfund.Tx) (*crowdfund.CheckResult, error) {
	return nil, errors.Wrap(ErrNoSuchPath, string(path))
}

func (path notFoundHandler) Deliver(crowdfund.Context, crowdfund.KVStore, crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	return nil, errors.Wrap(ErrNoSuchPath, string(path))
}
