package client

import (
	"fmt"

	"github.com/iov-one/crowdfund"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	nm "github.com/tendermint/tendermint/node"
	rpcclient "github.com/tendermint/tendermint/rpc/client"
	tmtypes "github.com/tendermint/tendermint/types"
)

// TransactionID is the hash of a transaction.
type TransactionID = cmn.HexBytes

// RequestQuery and ResponseQuery mirror abci queries, so a Client and an
// application can be used interchangeably.
type (
	RequestQuery  = abci.RequestQuery
	ResponseQuery = abci.ResponseQuery
)

// TxQuery is a tendermint tag query selecting transactions.
type TxQuery = string

// Header is a tendermint block header.
type Header = tmtypes.Header

// CommitResult is the outcome of a committed transaction. Result is set on
// success, Err when DeliverTx failed.
type CommitResult struct {
	ID     TransactionID
	Height int64
	Result *crowdfund.DeliverResult
	Err    error
}

// Status describes the node a client is connected to.
type Status struct {
	ChainID    string
	Height     int64
	CatchingUp bool
}

// QueryTxByID selects the transaction with the given id.
func QueryTxByID(id TransactionID) TxQuery {
	return fmt.Sprintf("%s='%X'", tmtypes.TxHashKey, id)
}

// QueryForHeader selects new block header events.
func QueryForHeader() string {
	return queryForEvent(tmtypes.EventNewBlockHeader)
}

func queryForEvent(eventType string) string {
	return fmt.Sprintf("%s='%s'", tmtypes.EventTypeKey, eventType)
}

// NewLocalConnection returns a connection to an in-process node.
func NewLocalConnection(node *nm.Node) rpcclient.Client {
	return rpcclient.NewLocal(node)
}

// NewHTTPConnection returns a connection to a remote node, for example
// "tcp://localhost:26657".
func NewHTTPConnection(remote string) rpcclient.Client {
	return rpcclient.NewHTTP(remote, "/websocket")
}
