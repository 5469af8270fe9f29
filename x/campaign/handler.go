package campaign

import (
	"encoding/hex"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/x"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	createCampaignCost int64 = 300
	contributeCost     int64 = 100
	withdrawCost       int64 = 0
	refundCost         int64 = 0
)

// Tag keys attached to every delivered campaign message.
const (
	TagCampaign    = "campaign"
	TagContributor = "contributor"
)

// RegisterRoutes will instantiate and register all handlers in this package.
func RegisterRoutes(r crowdfund.Registry, auth x.Authenticator, ctrl *Controller) {
	r.Handle(pathCreate, CreateHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathContribute, ContributeHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathWithdraw, WithdrawHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathRefund, RefundHandler{auth: auth, ctrl: ctrl})
}

// RegisterQuery exposes campaigns as "/campaigns" and contribution records
// as "/contributions", together with their indexes.
func RegisterQuery(qr crowdfund.QueryRouter) {
	NewCampaignBucket().Register("campaigns", qr)
	NewContributionBucket().Register("contributions", qr)
}

// CreateHandler opens campaigns owned by the main signer.
type CreateHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ crowdfund.Handler = CreateHandler{}

func (h CreateHandler) Check(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &crowdfund.CheckResult{GasAllocated: createCampaignCost}, nil
}

func (h CreateHandler) Deliver(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	owner, msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	key, _, err := h.ctrl.Create(ctx, db, owner, *msg.FundingGoal, msg.DurationDays)
	if err != nil {
		return nil, err
	}
	return &crowdfund.DeliverResult{
		Data: key,
		Tags: tags(key, nil),
	}, nil
}

func (h CreateHandler) validate(ctx crowdfund.Context, tx crowdfund.Tx) (crowdfund.Address, *CreateMsg, error) {
	var msg CreateMsg
	if err := crowdfund.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	owner, err := x.AnySigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return owner, &msg, nil
}

// ContributeHandler escrows funds of the main signer.
type ContributeHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ crowdfund.Handler = ContributeHandler{}

func (h ContributeHandler) Check(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &crowdfund.CheckResult{GasAllocated: contributeCost}, nil
}

func (h ContributeHandler) Deliver(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	caller, msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Contribute(ctx, db, msg.CampaignID, caller, *msg.Amount); err != nil {
		return nil, err
	}
	return &crowdfund.DeliverResult{Tags: tags(msg.CampaignID, caller)}, nil
}

func (h ContributeHandler) validate(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (crowdfund.Address, *ContributeMsg, error) {
	var msg ContributeMsg
	if err := crowdfund.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	caller, err := x.AnySigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	if _, err := h.ctrl.Campaign(db, msg.CampaignID); err != nil {
		return nil, nil, err
	}
	return caller, &msg, nil
}

// WithdrawHandler pays out a successful campaign to its owner.
type WithdrawHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ crowdfund.Handler = WithdrawHandler{}

func (h WithdrawHandler) Check(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &crowdfund.CheckResult{GasAllocated: withdrawCost}, nil
}

func (h WithdrawHandler) Deliver(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	caller, msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.Withdraw(ctx, db, msg.CampaignID, caller); err != nil {
		return nil, err
	}
	return &crowdfund.DeliverResult{Tags: tags(msg.CampaignID, nil)}, nil
}

func (h WithdrawHandler) validate(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (crowdfund.Address, *WithdrawMsg, error) {
	var msg WithdrawMsg
	if err := crowdfund.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	camp, err := h.ctrl.Campaign(db, msg.CampaignID)
	if err != nil {
		return nil, nil, err
	}
	// Any of the signers may be the owner.
	if !h.auth.HasAddress(ctx, camp.Owner) {
		return nil, nil, errors.Wrap(ErrNotBeneficiary, "owner signature missing")
	}
	return camp.Owner, &msg, nil
}

// RefundHandler returns the main signer's contribution to a failed campaign.
type RefundHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ crowdfund.Handler = RefundHandler{}

func (h RefundHandler) Check(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &crowdfund.CheckResult{GasAllocated: refundCost}, nil
}

func (h RefundHandler) Deliver(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	caller, msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.Refund(ctx, db, msg.CampaignID, caller); err != nil {
		return nil, err
	}
	return &crowdfund.DeliverResult{Tags: tags(msg.CampaignID, caller)}, nil
}

func (h RefundHandler) validate(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (crowdfund.Address, *RefundMsg, error) {
	var msg RefundMsg
	if err := crowdfund.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	caller, err := x.AnySigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	if _, err := h.ctrl.Campaign(db, msg.CampaignID); err != nil {
		return nil, nil, err
	}
	return caller, &msg, nil
}

// tags returns the searchable tags of a campaign message. Addresses are hex
// encoded as clients query them.
func tags(campaignID []byte, contributor crowdfund.Address) []common.KVPair {
	res := []common.KVPair{
		{Key: []byte(TagCampaign), Value: []byte(hex.EncodeToString(campaignID))},
	}
	if contributor != nil {
		res = append(res, common.KVPair{Key: []byte(TagContributor), Value: []byte(contributor.String())})
	}
	return res
}
