// Package chain resolves a lookup against the ordered provider list.
//
// Providers are tried one at a time, never in parallel, each under its
// own deadline taken from its configuration. The first provider that
// returns at least one volume wins. Timeouts and upstream errors are
// recorded as Failure values and the chain moves on; an empty answer is
// remembered as definitive. When the list is exhausted the caller gets
// *NotFoundError if any provider answered empty, otherwise
// *AllProvidersFailedError carrying every failure.
//
// Provider attempts are recorded as Prometheus metrics and as child
// spans of "chain.resolve".
package chain
