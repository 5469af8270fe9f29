/*
Package campaign implements escrowed, time-boxed funding campaigns.

A campaign collects contributions in a single currency until its deadline.
Once the deadline has passed it resolves to exactly one outcome: if the
funding goal was reached the owner may withdraw the whole pool once,
otherwise every contributor may take back what they put in, once.

Funds are held by the campaign's own escrow address and only move through a
cash.Controller. Every state change is written before the coins are moved and
both happen inside one savepoint, so a transfer that fails or re-enters the
campaign cannot leave the ledger in a partial state.

Handlers expose the operations as messages, the Ledger type exposes them to
in-process callers that need their own locking.

The Ledger lock is not reentrant. Code running inside a transfer, such as a
custom cash.Controller, must call the Controller with the store it was given
and never the Ledger that started the transfer, or it blocks forever. Through
the Controller a reentrant withdraw or refund sees the already updated
campaign and is rejected.
*/
package campaign
