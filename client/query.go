package client

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/app"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/x/campaign"
	"github.com/iov-one/crowdfund/x/cash"
	"github.com/iov-one/crowdfund/x/sigs"
)

var _ app.Querier = (*Client)(nil)

// Wallet returns the balance of given address. An address that never
// received any coins has an empty wallet.
func Wallet(q app.Querier, addr crowdfund.Address) (*cash.Set, error) {
	var set cash.Set
	if err := queryOne(q, "/wallets", addr, &set); err != nil {
		if errors.ErrNotFound.Is(err) {
			return &cash.Set{Metadata: &crowdfund.Metadata{Schema: 1}}, nil
		}
		return nil, errors.Wrap(err, "wallet")
	}
	return &set, nil
}

// Campaign returns the campaign with given ID.
func Campaign(q app.Querier, id []byte) (*campaign.Campaign, error) {
	var c campaign.Campaign
	if err := queryOne(q, "/campaigns", id, &c); err != nil {
		return nil, errors.Wrap(err, "campaign")
	}
	return &c, nil
}

// Contributions returns the records of all contributors of given campaign,
// including those that were fully refunded.
func Contributions(q app.Querier, campaignID []byte) ([]*campaign.Contribution, error) {
	res := q.Query(RequestQuery{Path: "/contributions/campaign", Data: campaignID})
	if res.Code != 0 {
		return nil, errors.ABCIError(res.Code, res.Log)
	}
	var values app.ResultSet
	if err := values.Unmarshal(res.Value); err != nil {
		return nil, errors.Wrap(err, "result set")
	}
	out := make([]*campaign.Contribution, len(values.Results))
	for i, raw := range values.Results {
		var c campaign.Contribution
		if err := c.Unmarshal(raw); err != nil {
			return nil, errors.Wrapf(err, "contribution %d", i)
		}
		out[i] = &c
	}
	return out, nil
}

// NextNonce returns the sequence the next transaction signed by given
// address must carry.
func NextNonce(q app.Querier, signer crowdfund.Address) (int64, error) {
	return sigs.NextNonce(app.NewABCIStore(q), signer)
}

func queryOne(q app.Querier, path string, key []byte, dest crowdfund.Persistent) error {
	res := q.Query(RequestQuery{Path: path, Data: key})
	if res.Code != 0 {
		return errors.ABCIError(res.Code, res.Log)
	}
	return app.UnmarshalOneResult(res.Value, dest)
}
