package brick

// Lazy defers obtaining a value until Value is first called.
type Lazy[T any] interface {
	// Value computes the value on first call and returns the cached one after.
	Value() T
	// IsInitialized reports whether Value has run, without running it.
	// A nil value counts as not computed, so Value runs again next time.
	IsInitialized() bool
}
