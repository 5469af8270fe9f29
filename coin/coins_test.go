package coin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustCombineCoins has one return value for tests...
func mustCombineCoins(cs ...Coin) Coins {
	s, err := CombineCoins(cs...)
	if err != nil {
		panic(err)
	}
	return s
}

func TestMakeCoins(t *testing.T) {
	cases := map[string]struct {
		inputs   []Coin
		isEmpty  bool
		isNonNeg bool
		has      []Coin // <= the wallet
		dontHave []Coin // > or outside the wallet
		isErr    bool
	}{
		"empty": {
			isEmpty:  true,
			isNonNeg: true,
			dontHave: []Coin{NewCoin(1, 0, "ETH")},
		},
		"ignore 0": {
			inputs:   []Coin{NewCoin(0, 0, "FOO")},
			isEmpty:  true,
			isNonNeg: true,
		},
		"simple": {
			inputs:   []Coin{NewCoin(40, 0, "FUD")},
			isNonNeg: true,
			has:      []Coin{NewCoin(10, 0, "FUD"), NewCoin(40, 0, "FUD")},
			dontHave: []Coin{NewCoin(40, 1, "FUD"), NewCoin(40, 0, "FUN")},
		},
		"out of order, with negative": {
			inputs:   []Coin{NewCoin(-20, -3, "FIN"), NewCoin(40, 5, "BON")},
			has:      []Coin{NewCoin(40, 4, "BON"), NewCoin(-30, 0, "FIN")},
			dontHave: []Coin{NewCoin(40, 6, "BON"), NewCoin(-20, 0, "FIN")},
		},
		"combine and remove": {
			inputs:   []Coin{NewCoin(-123, -456, "BOO"), NewCoin(123, 456, "BOO")},
			isEmpty:  true,
			isNonNeg: true,
		},
		"safely combine": {
			inputs:   []Coin{NewCoin(12, 0, "ADA"), NewCoin(-123, -456, "BOO"), NewCoin(124, 756, "BOO")},
			isNonNeg: true,
			has:      []Coin{NewCoin(12, 0, "ADA"), NewCoin(1, 300, "BOO")},
			dontHave: []Coin{NewCoin(13, 0, "ADA"), NewCoin(1, 400, "BOO")},
		},
		"invalid input currency": {
			inputs: []Coin{NewCoin(1, 2, "AL2")},
			isErr:  true,
		},
		"invalid input values": {
			inputs: []Coin{NewCoin(MaxInt+3, 2, "AND")},
			isErr:  true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			s, err := CombineCoins(tc.inputs...)
			if tc.isErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NoError(t, s.Validate())
			assert.Equal(t, tc.isEmpty, s.IsEmpty())
			assert.Equal(t, tc.isNonNeg, s.IsNonNegative())

			for _, h := range tc.has {
				assert.True(t, s.Contains(h), "should contain %s", h)
			}
			for _, d := range tc.dontHave {
				assert.False(t, s.Contains(d), "should not contain %s", d)
			}
		})
	}
}

func TestCoinsAddDoesNotModifyReceiver(t *testing.T) {
	orig := mustCombineCoins(NewCoin(5, 0, "ETH"))
	sum, err := orig.Add(NewCoin(5, 0, "ETH"))
	require.NoError(t, err)

	assert.Equal(t, NewCoin(5, 0, "ETH"), orig.Get("ETH"))
	assert.Equal(t, NewCoin(10, 0, "ETH"), sum.Get("ETH"))

	same, err := orig.Add(NewCoin(0, 0, "ETH"))
	require.NoError(t, err)
	assert.True(t, orig.Equals(same))
}

func TestCombine(t *testing.T) {
	a := mustCombineCoins(NewCoin(1, 0, "ADA"), NewCoin(2, 0, "ETH"))
	b := mustCombineCoins(NewCoin(3, 0, "ETH"), NewCoin(4, 0, "BTC"))

	got, err := a.Combine(b)
	require.NoError(t, err)
	want := mustCombineCoins(NewCoin(1, 0, "ADA"), NewCoin(4, 0, "BTC"), NewCoin(5, 0, "ETH"))
	assert.True(t, want.Equals(got), "got %v", got)
	require.NoError(t, got.Validate())

	assert.Equal(t, Coin{Ticker: "DOT"}, got.Get("DOT"))
}

func TestCoinsSubtract(t *testing.T) {
	w := mustCombineCoins(NewCoin(10, 0, "ETH"))
	rest, err := w.Subtract(NewCoin(10, 0, "ETH"))
	require.NoError(t, err)
	assert.True(t, rest.IsEmpty())

	debt, err := w.Subtract(NewCoin(11, 0, "ETH"))
	require.NoError(t, err)
	assert.False(t, debt.IsNonNegative())
}
