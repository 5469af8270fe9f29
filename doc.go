/*

Package crowdfund defines interfaces used throughout the app, such as: storage, transactions, handlers etc.
It also contains helpers to work with context, authentication conditions, time and abci results.
Look into this package to get a brief overview of design decisions made around interfaces and extension
building blocks. The escrow ledger itself lives in x/campaign.

*/

package crowdfund
