package uid

// StringID generates opaque string identifiers.
//
// Implementations must be safe for concurrent use.
type StringID interface {
	// Generate returns a new unique identifier.
	Generate() string
}
