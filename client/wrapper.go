package client

import (
	"context"
	"sync"
	"time"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

// indexDelay is how long the node needs after a block to index its
// transactions.
const indexDelay = 100 * time.Millisecond

// SubscribeTxByID blocks until the transaction is committed. Cancel ctx to
// stop waiting.
func (c *Client) SubscribeTxByID(ctx context.Context, id TransactionID) (*CommitResult, error) {
	txs := make(chan CommitResult, 1)
	if err := c.SubscribeTx(ctx, QueryTxByID(id), txs); err != nil {
		return nil, err
	}
	res, ok := <-txs
	if !ok {
		return nil, errors.Wrap(ErrTimeout, "subscription closed before a result")
	}
	return &res, nil
}

// WatchTx blocks until the transaction is committed. A transaction that is
// already in a block is returned right away.
func (c *Client) WatchTx(ctx context.Context, id TransactionID) (*CommitResult, error) {
	subctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Subscribe first, so a transaction committed while searching is not
	// missed.
	type outcome struct {
		res *CommitResult
		err error
	}
	sub := make(chan outcome, 1)
	go func() {
		res, err := c.SubscribeTxByID(subctx, id)
		sub <- outcome{res, err}
	}()

	// A failed lookup only means the transaction is not indexed yet.
	if found, _ := c.GetTxByID(ctx, id); found != nil {
		return found, nil
	}
	o := <-sub
	return o.res, o.err
}

// CommitTx submits tx and blocks until it is committed. The returned error
// covers submission and transport. A failed DeliverTx is reported in the
// Err field of the result.
func (c *Client) CommitTx(ctx context.Context, tx crowdfund.Tx) (*CommitResult, error) {
	id, err := c.SubmitTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	res, err := c.WatchTx(ctx, id)
	if err != nil {
		return nil, err
	}
	time.Sleep(indexDelay)
	return res, nil
}

// WatchTxs waits for all transactions in parallel. Results are in the order
// of ids. If any wait fails an error is returned.
func (c *Client) WatchTxs(ctx context.Context, ids []TransactionID) ([]*CommitResult, error) {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		lastErr error
	)
	res := make([]*CommitResult, len(ids))
	for i, id := range ids {
		if id == nil {
			continue
		}
		wg.Add(1)
		go func(i int, id TransactionID) {
			defer wg.Done()
			r, err := c.WatchTx(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			res[i] = r
			if err != nil {
				lastErr = err
			}
		}(i, id)
	}
	wg.Wait()
	if lastErr != nil {
		return nil, lastErr
	}
	return res, nil
}

// CommitTxs submits all transactions in order and waits until all are
// committed. Submission stops at the first rejected transaction.
func (c *Client) CommitTxs(ctx context.Context, txs []crowdfund.Tx) ([]*CommitResult, error) {
	ids := make([]TransactionID, len(txs))
	for i, tx := range txs {
		id, err := c.SubmitTx(ctx, tx)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return c.WatchTxs(ctx, ids)
}

// WaitForNextBlock returns the header of the next block.
func (c *Client) WaitForNextBlock(ctx context.Context) (*Header, error) {
	return c.waitForHeader(ctx, func(Header) bool { return true })
}

// WaitForHeight returns the first new header at height or above. A height
// in the past still waits for the next block.
func (c *Client) WaitForHeight(ctx context.Context, height int64) (*Header, error) {
	return c.waitForHeader(ctx, func(h Header) bool { return h.Height >= height })
}

func (c *Client) waitForHeader(ctx context.Context, match func(Header) bool) (*Header, error) {
	subctx, cancel := context.WithCancel(ctx)
	defer cancel()

	headers := make(chan Header, 2)
	if err := c.SubscribeHeaders(subctx, headers); err != nil {
		return nil, err
	}
	for h := range headers {
		if match(h) {
			time.Sleep(indexDelay)
			return &h, nil
		}
	}
	return nil, errors.Wrap(ErrNetwork, "header subscription closed")
}
