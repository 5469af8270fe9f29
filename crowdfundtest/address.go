package crowdfundtest

import (
	"testing"

	"github.com/iov-one/crowdfund"
)

// ParseAddress takes an address in a human readable format and returns its
// binary representation. This function is a test helper that is using
// crowdfund.ParseAddress function functionality.
func ParseAddress(t testing.TB, encodedAddress string) crowdfund.Address {
	t.Helper()

	addr, err := crowdfund.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
