package client

import (
	"context"
	"fmt"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	cmn "github.com/tendermint/tendermint/libs/common"
	tmquery "github.com/tendermint/tendermint/libs/pubsub/query"
	nm "github.com/tendermint/tendermint/node"
	rpcclient "github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

// Transactions requested per page when searching.
const txPerPage = 50

// Client talks to a tendermint node running the crowdfund application.
//
// This file holds the primitives mapping to single rpc calls. Blocking
// helpers built on top of them are in wrapper.go.
type Client struct {
	conn rpcclient.Client
}

// NewClient returns a client using an existing rpc connection.
func NewClient(conn rpcclient.Client) *Client {
	return &Client{conn: conn}
}

// NewLocalClient returns a client of an in-process node.
func NewLocalClient(node *nm.Node) *Client {
	return NewClient(NewLocalConnection(node))
}

// Status returns the chain id and the latest height known to the node.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	res, err := c.conn.Status()
	if err != nil {
		return nil, errors.Wrapf(ErrNetwork, "status: %s", err)
	}
	return &Status{
		ChainID:    res.NodeInfo.Network,
		Height:     res.SyncInfo.LatestBlockHeight,
		CatchingUp: res.SyncInfo.CatchingUp,
	}, nil
}

// Header returns the header of the block at height. Heights that were not
// produced yet are an error.
func (c *Client) Header(ctx context.Context, height int64) (*Header, error) {
	res, err := c.conn.BlockchainInfo(height, height)
	if err != nil {
		return nil, errors.Wrapf(ErrNetwork, "blockchain info: %s", err)
	}
	if len(res.BlockMetas) == 0 {
		return nil, errors.Wrapf(errors.ErrInput, "no block at height %d", height)
	}
	return &res.BlockMetas[0].Header, nil
}

// SubmitTx adds tx to the mempool and returns its id once CheckTx passed.
// The transaction is not committed yet, see WatchTx and CommitTx.
func (c *Client) SubmitTx(ctx context.Context, tx crowdfund.Tx) (TransactionID, error) {
	raw, err := tx.Marshal()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrMsg, "marshaling: %s", err)
	}
	res, err := c.conn.BroadcastTxSync(raw)
	if err != nil {
		return nil, errors.Wrapf(ErrNetwork, "submit tx: %s", err)
	}
	if res.Code != errors.SuccessABCICode {
		return nil, errors.ABCIError(res.Code, res.Log)
	}
	return res.Hash, nil
}

// Query runs an abci query on the node. Its signature matches the abci
// interface so the client can back app.ABCIStore. A network failure is
// reported with the ErrNetwork code.
func (c *Client) Query(q RequestQuery) ResponseQuery {
	opts := rpcclient.ABCIQueryOptions{Height: q.Height, Prove: q.Prove}
	res, err := c.conn.ABCIQueryWithOptions(q.Path, q.Data, opts)
	if err != nil {
		code, log := errors.ABCIInfo(errors.Wrap(ErrNetwork, err.Error()), false)
		return ResponseQuery{Code: code, Log: log}
	}
	return res.Response
}

// GetTxByID returns the committed transaction with the given id.
func (c *Client) GetTxByID(ctx context.Context, id TransactionID) (*CommitResult, error) {
	res, err := c.conn.Tx(id, false)
	if err != nil {
		return nil, errors.Wrapf(ErrNetwork, "get tx: %s", err)
	}
	return fromResultTx(res), nil
}

// SearchTx returns all committed transactions matching query, in the order
// the node indexed them. All pages are fetched.
func (c *Client) SearchTx(ctx context.Context, query TxQuery) ([]*CommitResult, error) {
	var results []*CommitResult
	for page := 1; ; page++ {
		res, err := c.conn.TxSearch(query, false, page, txPerPage)
		if err != nil {
			return nil, errors.Wrapf(ErrNetwork, "search tx: %s", err)
		}
		for _, tx := range res.Txs {
			results = append(results, fromResultTx(tx))
		}
		if len(res.Txs) == 0 || len(results) >= res.TotalCount {
			return results, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(ErrTimeout, err.Error())
		}
	}
}

// SubscribeHeaders writes every new block header to results until ctx is
// done. results is closed when the subscription ends.
func (c *Client) SubscribeHeaders(ctx context.Context, results chan<- Header) error {
	return c.stream(ctx, QueryForHeader(), func(data interface{}) {
		if ev, ok := data.(tmtypes.EventDataNewBlockHeader); ok {
			results <- ev.Header
		}
	}, func() { close(results) })
}

// SubscribeTx writes every committed transaction matching query to results
// until ctx is done. results is closed when the subscription ends.
func (c *Client) SubscribeTx(ctx context.Context, query TxQuery, results chan<- CommitResult) error {
	q := fmt.Sprintf("%s AND %s", queryForEvent(tmtypes.EventTx), query)
	return c.stream(ctx, q, func(data interface{}) {
		if ev, ok := data.(tmtypes.EventDataTx); ok {
			results <- fromTxResult(ev.TxResult)
		}
	}, func() { close(results) })
}

// stream passes the data of every event matching query to emit, from a
// separate goroutine. done is called once no more events will come.
func (c *Client) stream(ctx context.Context, query string, emit func(interface{}), done func()) error {
	events, err := c.subscribe(ctx, query)
	if err != nil {
		return err
	}
	go func() {
		defer done()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				emit(ev.Data)
			}
		}
	}()
	return nil
}

// subscribe registers a subscription that is cancelled together with ctx.
func (c *Client) subscribe(ctx context.Context, query string) (<-chan ctypes.ResultEvent, error) {
	q, err := tmquery.New(query)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "query %q: %s", query, err)
	}
	subscriber := cmn.RandStr(16)
	out, err := c.conn.Subscribe(ctx, subscriber, q.String())
	if err != nil {
		return nil, errors.Wrapf(ErrNetwork, "subscribe to %q: %s", query, err)
	}
	go func() {
		<-ctx.Done()
		_ = c.conn.Unsubscribe(context.Background(), subscriber, q.String())
	}()
	return out, nil
}

func fromResultTx(tx *ctypes.ResultTx) *CommitResult {
	res, err := crowdfund.ParseDeliverOrError(tx.TxResult)
	return &CommitResult{ID: tx.Hash, Height: tx.Height, Result: res, Err: err}
}

func fromTxResult(tx tmtypes.TxResult) CommitResult {
	res, err := crowdfund.ParseDeliverOrError(tx.Result)
	return CommitResult{ID: tx.Tx.Hash(), Height: tx.Height, Result: res, Err: err}
}
