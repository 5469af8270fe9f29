/*
Package cash defines a simple implementation of holding and sending coins
between addresses.

There is no logic in the coins (tokens), except that the balance
of any coin may not go below zero. Thus, this implementation is
referred to as cash. Simple and safe.

Other extensions, like the campaign escrow, move funds through the
CoinMover interface so that every transfer goes through the same checks.
*/
package cash
