package crowdfundtest

import "github.com/iov-one/crowdfund"

// Handler is a mock implementation of the crowdfund.Handler interface. It
// counts calls and returns the configured results.
type Handler struct {
	checkCall   int
	CheckResult crowdfund.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult crowdfund.DeliverResult
	DeliverErr    error

	// Panic if set makes both methods panic with its value.
	Panic interface{}

	// WriteKey if set is written with WriteValue to the store before
	// returning.
	WriteKey   []byte
	WriteValue []byte
}

var _ crowdfund.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.CheckResult, error) {
	h.checkCall++
	if err := h.act(db); err != nil {
		return nil, err
	}
	res := h.CheckResult
	return &res, h.CheckErr
}

func (h *Handler) Deliver(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	h.deliverCall++
	if err := h.act(db); err != nil {
		return nil, err
	}
	res := h.DeliverResult
	return &res, h.DeliverErr
}

func (h *Handler) act(db crowdfund.KVStore) error {
	if h.Panic != nil {
		panic(h.Panic)
	}
	if h.WriteKey != nil {
		return db.Set(h.WriteKey, h.WriteValue)
	}
	return nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
