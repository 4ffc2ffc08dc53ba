package hash

// Hash computes and verifies keyed digests of strings.
type Hash interface {
	// Hash returns the digest of the input string.
	Hash(str string) ([]byte, error)
	// Verify reports whether the plaintext string matches the given digest.
	Verify(hashed, str string) bool
}
