package utils

import (
	"github.com/iov-one/crowdfund"
	"github.com/tendermint/tendermint/libs/common"
)

// ActionKey is the tag holding the path of a delivered message.
const ActionKey = "action"

// ActionTagger tags every successful DeliverTx with the path of its
// message, for example action='campaign/contribute'. Clients search and
// subscribe to transactions by that tag.
type ActionTagger struct{}

var _ crowdfund.Decorator = ActionTagger{}

// NewActionTagger returns an ActionTagger decorator.
func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

// Check does not tag anything.
func (ActionTagger) Check(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx, next crowdfund.Checker) (*crowdfund.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver appends the action tag to a successful result.
func (ActionTagger) Deliver(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx, next crowdfund.Deliverer) (*crowdfund.DeliverResult, error) {
	// An undecodable message fails before running the handler.
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags, common.KVPair{Key: []byte(ActionKey), Value: []byte(msg.Path())})
	return res, nil
}
