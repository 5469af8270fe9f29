package crowdfundtest

import "github.com/iov-one/crowdfund"

// Tx represents a crowdfund transaction.
// Transaction represents a single message that is to be processed within this
// transaction.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg crowdfund.Msg
	// Err if set is returned by any method call.
	Err error
}

var _ crowdfund.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (crowdfund.Msg, error) {
	return tx.Msg, tx.Err
}

func (tx *Tx) Unmarshal([]byte) error {
	panic("not implemented")
}

func (tx *Tx) Marshal() ([]byte, error) {
	panic("not implemented")
}

// Msg represents a crowdfund message.
// Message is a request processed by the application within a single
// transaction.
type Msg struct {
	// Path returned by the path method, consumed by the router.
	RoutePath string
	// Err if set is returned by Validate.
	Err error
}

var _ crowdfund.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}
