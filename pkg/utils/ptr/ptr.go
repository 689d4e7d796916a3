// Package ptr has helpers to take the address of a value.
package ptr

// To returns a pointer to the given value.
func To[T any](v T) *T {
	return &v
}
