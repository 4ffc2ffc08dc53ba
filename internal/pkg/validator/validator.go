package validator

// Validator validates structs using their field tags.
type Validator interface {
	// Validate checks data and returns a descriptive error when any rule fails.
	Validate(data any) error
}
