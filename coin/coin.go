package coin

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/iov-one/crowdfund/errors"
)

// IsCC is the RegExp to ensure valid currency codes
var IsCC = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

const (
	// MaxInt is the largest whole value we accept
	MaxInt int64 = 999999999999999 // 10^15-1
	// MinInt is the lowest whole value we accept
	MinInt = -MaxInt

	// FracUnit is the number of fractional units in one whole coin.
	FracUnit int64 = 1000000000 // 10^9
	// MaxFrac is the highest possible fractional value
	MaxFrac = FracUnit - 1
	// MinFrac is the lowest possible fractional value
	MinFrac = -MaxFrac

	fracDigits = 9
)

// Coin is a fixed point amount of a single currency. Whole and Fractional
// always carry the same sign once normalized.
//
// Campaign goals, contributions and wallet balances are all expressed as
// coins. Amounts of different tickers never mix.
type Coin struct {
	// Whole coins, -10^15 < integer < 10^15
	Whole int64 `json:"whole,omitempty"`
	// Billionth of coins. 0 <= abs(fractional) < 10^9
	// If fractional != 0, must have same sign as integer
	Fractional int64 `json:"fractional,omitempty"`
	// Ticker is 3-4 upper-case letters and
	// all Coins of the same currency can be combined
	Ticker string `json:"ticker,omitempty"`
}

// NewCoin creates a new coin object
func NewCoin(whole int64, fractional int64, ticker string) Coin {
	return Coin{
		Whole:      whole,
		Fractional: fractional,
		Ticker:     ticker,
	}
}

// NewCoinp returns a pointer to a new coin.
func NewCoinp(whole, fractional int64, ticker string) *Coin {
	c := NewCoin(whole, fractional, ticker)
	return &c
}

// ID returns a coin ticker name.
func (c Coin) ID() string {
	return c.Ticker
}

// Add returns the sum of both coins. Coins of different currencies cannot be
// added. A zero coin without a ticker is neutral.
func (c Coin) Add(o Coin) (Coin, error) {
	switch {
	case c.Ticker == "" && c.IsZero():
		return o, nil
	case o.Ticker == "" && o.IsZero():
		return c, nil
	case !c.SameType(o):
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "adding %s to %s", o.Ticker, c.Ticker)
	}
	return Coin{
		Ticker:     c.Ticker,
		Whole:      c.Whole + o.Whole,
		Fractional: c.Fractional + o.Fractional,
	}.normalize()
}

// Negative returns the opposite value, so that
//   c.Add(c.Negative()).IsZero() == true
func (c Coin) Negative() Coin {
	return NewCoin(-c.Whole, -c.Fractional, c.Ticker)
}

// Subtract given amount.
func (c Coin) Subtract(amount Coin) (Coin, error) {
	return c.Add(amount.Negative())
}

// Compare returns 1 if c is larger than o, -1 if it is smaller and 0 when
// both are equal. Tickers are not inspected and both coins are expected to
// be normalized.
func (c Coin) Compare(o Coin) int {
	if r := cmp(c.Whole, o.Whole); r != 0 {
		return r
	}
	return cmp(c.Fractional, o.Fractional)
}

func cmp(a, b int64) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// IsGTE returns true if c is of the same currency and at least as large as
// o.
func (c Coin) IsGTE(o Coin) bool {
	return c.SameType(o) && c.Compare(o) >= 0
}

// Equals returns true if all fields are identical
func (c Coin) Equals(o Coin) bool {
	return c == o
}

// IsEmpty returns true on null or zero amount
func IsEmpty(c *Coin) bool {
	return c == nil || c.IsZero()
}

// IsZero returns true amounts are 0
func (c Coin) IsZero() bool {
	return c.Whole == 0 && c.Fractional == 0
}

// IsPositive returns true if the value is greater than 0
func (c Coin) IsPositive() bool {
	return c.Compare(Coin{}) > 0
}

// IsNonNegative returns true if the value is 0 or higher
func (c Coin) IsNonNegative() bool {
	return c.Whole >= 0 && c.Fractional >= 0
}

// SameType returns true if they have the same currency
func (c Coin) SameType(o Coin) bool {
	return c.Ticker == o.Ticker
}

// Clone provides an independent copy of a coin pointer
func (c *Coin) Clone() *Coin {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Validate ensures that the coin is in the valid range and has a valid
// currency code. Negative values are accepted.
func (c Coin) Validate() error {
	if !IsCC(c.Ticker) {
		return errors.Wrapf(errors.ErrCurrency, "invalid currency: %s", c.Ticker)
	}
	if c.Whole < MinInt || c.Whole > MaxInt {
		return errors.Wrap(errors.ErrOverflow, "whole")
	}
	if c.Fractional < MinFrac || c.Fractional > MaxFrac {
		return errors.Wrap(errors.ErrOverflow, "fractional")
	}
	if c.Whole > 0 && c.Fractional < 0 || c.Whole < 0 && c.Fractional > 0 {
		return errors.Wrap(errors.ErrState, "mismatched sign")
	}
	return nil
}

// normalize carries the fractional overflow into the whole part and aligns
// the signs of both parts.
func (c Coin) normalize() (Coin, error) {
	c.Whole += c.Fractional / FracUnit
	c.Fractional %= FracUnit

	switch {
	case c.Whole > 0 && c.Fractional < 0:
		c.Whole--
		c.Fractional += FracUnit
	case c.Whole < 0 && c.Fractional > 0:
		c.Whole++
		c.Fractional -= FracUnit
	}

	if c.Whole < MinInt || c.Whole > MaxInt {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "%d whole units", c.Whole)
	}
	return c, nil
}

// UnmarshalJSON accepts both the human readable string format, for example
// "1.5 ETH", and the object representation.
func (c *Coin) UnmarshalJSON(raw []byte) error {
	var human string
	if json.Unmarshal(raw, &human) == nil {
		parsed, err := ParseHumanFormat(human)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	// A distinct type is needed, or this method would be called again.
	type plainCoin Coin
	var plain plainCoin
	if err := json.Unmarshal(raw, &plain); err != nil {
		return errors.Wrapf(errors.ErrInput, "coin: %s", err)
	}
	*c = Coin(plain)
	return nil
}

// String returns the human readable format of the coin. For a valid coin the
// result can be parsed back with ParseHumanFormat.
func (c Coin) String() string {
	if n, err := c.normalize(); err == nil {
		c = n
	}

	whole, frac := c.Whole, c.Fractional
	var b strings.Builder
	if whole < 0 || frac < 0 {
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatInt(abs(whole), 10))
	if frac != 0 {
		digits := fmt.Sprintf("%0*d", fracDigits, abs(frac))
		b.WriteByte('.')
		b.WriteString(strings.TrimRight(digits, "0"))
	}
	if c.Ticker != "" {
		b.WriteByte(' ')
		b.WriteString(c.Ticker)
	}
	return b.String()
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

var humanCoinFormatRx = regexp.MustCompile(`^(-?)\s*(\d+)(?:\.(\d+))?\s*([A-Z]{3,4})$`)

// ParseHumanFormat parses the human readable coin representation:
//   "<whole>[.<fractional>] <ticker>"
// At most nine fractional digits are accepted.
func ParseHumanFormat(h string) (Coin, error) {
	m := humanCoinFormatRx.FindStringSubmatch(h)
	if m == nil {
		return Coin{}, errors.Wrapf(errors.ErrInput, "invalid coin format %q", h)
	}
	sign, wholeDigits, fracDigitsRaw, ticker := m[1], m[2], m[3], m[4]

	whole, err := strconv.ParseInt(wholeDigits, 10, 64)
	if err != nil {
		return Coin{}, errors.Wrapf(errors.ErrInput, "invalid whole value: %s", err)
	}

	var frac int64
	if fracDigitsRaw != "" {
		if len(fracDigitsRaw) > fracDigits {
			return Coin{}, errors.Wrap(errors.ErrInput, "fractional part exceeds nine digits")
		}
		padded := fracDigitsRaw + strings.Repeat("0", fracDigits-len(fracDigitsRaw))
		if frac, err = strconv.ParseInt(padded, 10, 64); err != nil {
			return Coin{}, errors.Wrapf(errors.ErrInput, "invalid fractional value: %s", err)
		}
	}

	if sign == "-" {
		whole, frac = -whole, -frac
	}
	return NewCoin(whole, frac, ticker), nil
}

// Set updates this coin value to what is provided. This method implements
// flag.Value interface.
func (c *Coin) Set(raw string) error {
	val, err := ParseHumanFormat(raw)
	if err != nil {
		return err
	}
	*c = val
	return nil
}

// Type returns the name of the flag value type, as required by pflag.Value.
func (c *Coin) Type() string {
	return "coin"
}
