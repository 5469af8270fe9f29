/*
Package crowdfundtest provides mocks and helpers used by tests across the
repository: authenticators, handlers, decorators, a minimal transaction and
store constructors.
*/
package crowdfundtest
