package app

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/codec"
	"github.com/iov-one/crowdfund/errors"
)

// ResultSet holds any number of serialized values. Query responses carry
// keys and values as two result sets of the same length.
type ResultSet struct {
	Results [][]byte `json:"results"`
}

// Marshal serializes the result set.
func (r *ResultSet) Marshal() ([]byte, error) {
	return codec.Marshal(r)
}

// Unmarshal loads a serialized result set. An empty set serializes to no
// bytes at all.
func (r *ResultSet) Unmarshal(bz []byte) error {
	if len(bz) == 0 {
		r.Results = nil
		return nil
	}
	return codec.Unmarshal(bz, r)
}

// ResultsFromKeys returns a ResultSet of all keys
// given a set of models
func ResultsFromKeys(models []crowdfund.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values
// given a set of models
func ResultsFromValues(models []crowdfund.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues
// and makes then a consistent whole again
func JoinResults(keys, values *ResultSet) ([]crowdfund.Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrapf(errors.ErrState, "mismatched result set size: %d keys, %d values", len(kref), len(vref))
	}
	mods := make([]crowdfund.Model, len(kref))
	for i := range mods {
		mods[i] = crowdfund.Pair(kref[i], vref[i])
	}
	return mods, nil
}

// UnmarshalOneResult will parse a resultset, and
// it if is not empty, unmarshal the first result into o
func UnmarshalOneResult(bz []byte, o crowdfund.Persistent) error {
	var res ResultSet
	if err := res.Unmarshal(bz); err != nil {
		return err
	}
	if len(res.Results) == 0 {
		return errors.Wrap(errors.ErrNotFound, "empty result set")
	}
	return o.Unmarshal(res.Results[0])
}
