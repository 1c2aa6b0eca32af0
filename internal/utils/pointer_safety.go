package utils

// Ptr returns a pointer to v, for building partial-update payloads.
func Ptr[T any](v T) *T {
	return &v
}
