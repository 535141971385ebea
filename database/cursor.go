package database

// Cursor iterates over database entries within a single bucket, in
// lexicographic order of their keys.
type Cursor interface {
	// Next moves the iterator to the next key/value pair. It returns whether
	// the iterator is exhausted. Panics if the cursor is closed.
	Next() bool

	// First moves the iterator to the first key/value pair. It returns false
	// if such a pair does not exist. Panics if the cursor is closed.
	First() bool

	// Key returns the key of the current key/value pair, or ErrNotFound if
	// done. The bucket prefix is removed, so the key contains only the
	// suffix. Note that the key is trimmed to its logical value, so it may
	// not be used to construct database lookups directly.
	Key() (*Key, error)

	// Value returns the value of the current key/value pair, or ErrNotFound
	// if done.
	Value() ([]byte, error)

	// Close releases the iterator.
	Close() error
}
