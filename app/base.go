package app

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp is a complete abci application. It decodes transactions and runs
// them through a handler on top of the state managed by StoreApp.
type BaseApp struct {
	*StoreApp
	decoder crowdfund.TxDecoder
	handler crowdfund.Handler
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp returns an application running handler for every transaction
// decoder accepts. In debug mode error responses carry stack traces.
func NewBaseApp(store *StoreApp, decoder crowdfund.TxDecoder, handler crowdfund.Handler, debug bool) BaseApp {
	return BaseApp{
		StoreApp: store,
		decoder:  decoder,
		handler:  handler,
		debug:    debug,
	}
}

// DeliverTx executes the transaction against the deliver cache.
func (b BaseApp) DeliverTx(raw []byte) abci.ResponseDeliverTx {
	tx, err := b.decode(raw)
	if err != nil {
		return crowdfund.DeliverTxError(err, b.debug)
	}
	ctx := b.txContext("deliver_tx", tx)
	res, err := b.handler.Deliver(ctx, b.DeliverStore(), tx)
	return crowdfund.DeliverOrError(res, err, b.debug)
}

// CheckTx validates the transaction against the check cache.
func (b BaseApp) CheckTx(raw []byte) abci.ResponseCheckTx {
	tx, err := b.decode(raw)
	if err != nil {
		return crowdfund.CheckTxError(err, b.debug)
	}
	ctx := b.txContext("check_tx", tx)
	res, err := b.handler.Check(ctx, b.CheckStore(), tx)
	return crowdfund.CheckOrError(res, err, b.debug)
}

func (b BaseApp) txContext(call string, tx crowdfund.Tx) crowdfund.Context {
	return crowdfund.WithLogInfo(b.BlockContext(), "call", call, "path", crowdfund.GetPath(tx))
}

// decode turns a decoder panic into an error.
func (b BaseApp) decode(raw []byte) (tx crowdfund.Tx, err error) {
	defer errors.Recover(&err)
	return b.decoder(raw)
}
