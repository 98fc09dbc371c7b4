package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrMalformedRecord = errors.New("malformed record")
	ErrPartitionFetch  = errors.New("partition fetch failed")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrNotFound        = errors.New("not found")
)

// PartitionError reports a failure while fetching or iterating one partition key.
// It matches both ErrPartitionFetch and the underlying cause with errors.Is.
type PartitionError struct {
	Key string
	Err error
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("partition %q: %v", e.Key, e.Err)
}

func (e *PartitionError) Unwrap() []error {
	return []error{ErrPartitionFetch, e.Err}
}

// NewPartitionError wraps err for the given partition key.
func NewPartitionError(key string, err error) error {
	return &PartitionError{Key: key, Err: err}
}
