// Package hash provides helpers for computing keyed digests.
//
// The primary use is the identity provider's client-secret binding: an
// HMAC-SHA256 digest over the provider username and client ID, verified by
// the provider on every call. Implementations live behind a small interface
// so callers can be tested with fakes.
package hash
