// Package validate parses and sanitizes inbound lookup parameters.
//
// Everything here is a pure function of its input: a parse returns either
// a value that is safe to derive cache keys from and forward upstream, or a
// *ValidationError listing each rejected field. Never both.
package validate
