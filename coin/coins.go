package coin

import (
	"sort"

	"github.com/iov-one/crowdfund/errors"
)

// Coins is the content of a wallet: at most one coin per currency, sorted by
// ticker, never holding a zero amount.
type Coins []*Coin

// CombineCoins returns the normalized set holding the sum of all given
// coins, whatever their order.
func CombineCoins(cs ...Coin) (Coins, error) {
	res := Coins{}
	for _, c := range cs {
		var err error
		if res, err = res.Add(c); err != nil {
			return nil, err
		}
	}
	return res, res.Validate()
}

// Clone returns a deep copy of the set.
func (cs Coins) Clone() Coins {
	if cs == nil {
		return nil
	}
	res := make(Coins, len(cs))
	for i, c := range cs {
		res[i] = c.Clone()
	}
	return res
}

// Add returns a new set with the holdings increased by c. The receiver is
// never modified. A currency that sums up to zero is removed.
func (cs Coins) Add(c Coin) (Coins, error) {
	res := cs.Clone()
	if c.IsZero() {
		return res, nil
	}

	i, found := res.search(c.Ticker)
	if !found {
		res = append(res, nil)
		copy(res[i+1:], res[i:])
		res[i] = &c
		return res, nil
	}

	sum, err := res[i].Add(c)
	if err != nil {
		return nil, err
	}
	if sum.IsZero() {
		return append(res[:i], res[i+1:]...), nil
	}
	res[i] = &sum
	return res, nil
}

// Subtract returns a new set with the holdings decreased by c. The result
// may hold negative amounts.
func (cs Coins) Subtract(c Coin) (Coins, error) {
	return cs.Add(c.Negative())
}

// Combine returns a new set holding the sum of both sets.
func (cs Coins) Combine(o Coins) (Coins, error) {
	res := cs.Clone()
	for _, c := range o {
		var err error
		if res, err = res.Add(*c); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Contains returns true if the set holds at least c. If it does then
//   cs.Subtract(c).IsNonNegative() == true
func (cs Coins) Contains(c Coin) bool {
	return cs.Get(c.Ticker).Compare(c) >= 0
}

// Get returns the amount held in given currency, a zero coin if none.
func (cs Coins) Get(ticker string) Coin {
	if i, found := cs.search(ticker); found {
		return *cs[i]
	}
	return Coin{Ticker: ticker}
}

// search returns the position of the ticker in the set and whether it is
// present. When missing, the position is where it would be inserted.
func (cs Coins) search(ticker string) (int, bool) {
	i := sort.Search(len(cs), func(i int) bool {
		return cs[i].Ticker >= ticker
	})
	return i, i < len(cs) && cs[i].Ticker == ticker
}

// IsEmpty returns if nothing is in the Coins
func (cs Coins) IsEmpty() bool {
	return len(cs) == 0
}

// IsNonNegative returns true if all coins are positive. An empty set is
// accepted as well.
func (cs Coins) IsNonNegative() bool {
	for _, c := range cs {
		if !c.IsPositive() {
			return false
		}
	}
	return true
}

// Equals returns true if both sets hold the same coins.
func (cs Coins) Equals(o Coins) bool {
	if len(cs) != len(o) {
		return false
	}
	for i := range cs {
		if !cs[i].Equals(*o[i]) {
			return false
		}
	}
	return true
}

// Validate requires that all coins are valid, non zero and sorted by
// ticker without duplicates.
func (cs Coins) Validate() error {
	for i, c := range cs {
		if c == nil {
			return errors.Wrap(errors.ErrEmpty, "nil coin")
		}
		if err := c.Validate(); err != nil {
			return errors.Wrap(err, "coin")
		}
		if c.IsZero() {
			return errors.Wrap(errors.ErrState, "zero coins")
		}
		if i > 0 && c.Ticker <= cs[i-1].Ticker {
			return errors.Wrap(errors.ErrState, "not sorted")
		}
	}
	return nil
}
