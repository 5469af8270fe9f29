package crowdfund

import (
	"github.com/iov-one/crowdfund/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
)

// DeliverResult is the outcome of a successful DeliverTx. Failures are
// always reported as errors.
type DeliverResult struct {
	// Data is returned to the client, for example the id of a new campaign.
	Data []byte
	Log  string
	// Tags are indexed by tendermint and can be searched for.
	Tags    []common.KVPair
	GasUsed int64
}

// ToABCI returns the abci response for d.
func (d DeliverResult) ToABCI() abci.ResponseDeliverTx {
	return abci.ResponseDeliverTx{
		Data:    d.Data,
		Log:     d.Log,
		Tags:    d.Tags,
		GasUsed: d.GasUsed,
	}
}

// CheckResult is the outcome of a successful CheckTx.
type CheckResult struct {
	Data []byte
	Log  string
	// GasAllocated is the cost the transaction is allowed to reach.
	GasAllocated int64
}

// NewCheck returns a result allocating gas with an informational log.
func NewCheck(gasAllocated int64, log string) *CheckResult {
	return &CheckResult{GasAllocated: gasAllocated, Log: log}
}

// ToABCI returns the abci response for c.
func (c CheckResult) ToABCI() abci.ResponseCheckTx {
	return abci.ResponseCheckTx{
		Data:      c.Data,
		Log:       c.Log,
		GasWanted: c.GasAllocated,
	}
}

// DeliverOrError returns the response for result, or for err if set.
func DeliverOrError(result *DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err != nil {
		return DeliverTxError(err, debug)
	}
	return result.ToABCI()
}

// CheckOrError returns the response for result, or for err if set.
func CheckOrError(result *CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err != nil {
		return CheckTxError(err, debug)
	}
	return result.ToABCI()
}

// DeliverTxError returns a failed DeliverTx response. Outside of debug mode
// errors without a code are redacted.
func DeliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	code, log := txErrorInfo("cannot deliver tx", err, debug)
	return abci.ResponseDeliverTx{Code: code, Log: log}
}

// CheckTxError returns a failed CheckTx response. Outside of debug mode
// errors without a code are redacted.
func CheckTxError(err error, debug bool) abci.ResponseCheckTx {
	code, log := txErrorInfo("cannot check tx", err, debug)
	return abci.ResponseCheckTx{Code: code, Log: log}
}

func txErrorInfo(prefix string, err error, debug bool) (uint32, string) {
	code, log := errors.ABCIInfo(err, debug)
	if code == errors.SuccessABCICode {
		return code, log
	}
	return code, prefix + ": " + log
}

// ParseDeliverOrError reads a DeliverTx response back. A failed response
// is turned into an error matching the registered root error of its code.
func ParseDeliverOrError(res abci.ResponseDeliverTx) (*DeliverResult, error) {
	if res.Code != errors.SuccessABCICode {
		return nil, errors.ABCIError(res.Code, res.Log)
	}
	d := DeliverResult{
		Data:    res.Data,
		Log:     res.Log,
		Tags:    res.Tags,
		GasUsed: res.GasUsed,
	}
	return &d, nil
}
