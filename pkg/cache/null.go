package cache

import "context"

// NullIndex is a no-op index that never stores anything.
// Useful for testing or when caching should be disabled.
type NullIndex struct{}

// NewNullIndex creates a null index.
func NewNullIndex() *NullIndex {
	return &NullIndex{}
}

// Get always returns a miss.
func (x *NullIndex) Get(ctx context.Context, key string) (*Entry, bool, error) {
	return nil, false, nil
}

// Put does nothing.
func (x *NullIndex) Put(ctx context.Context, key string, entry *Entry) error {
	return nil
}

// Invalidate does nothing.
func (x *NullIndex) Invalidate(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (x *NullIndex) Close() error {
	return nil
}

// Ensure NullIndex implements Index.
var _ Index = (*NullIndex)(nil)
