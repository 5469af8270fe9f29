/*
Package x contains the standard extensions of the application.

Extensions implement common functionality (Handler, Decorator,
etc.) and are combined together in cmd/crowdfundd to construct
the application. This package holds the glue they share, most
notably the Authenticator abstraction.
*/
package x
