// Package jwt is helpers for working with JSON Web Tokens (JWT).
//
// The simulated identity provider uses it to mint deterministic access and
// ID tokens so login flows stay exercisable without a live provider. It
// includes a typed Claims wrapper and a symmetric HS512 implementation for
// generating and verifying tokens.
package jwt
