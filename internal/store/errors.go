package store

import "errors"

// ErrNotFound is returned when a requested bucket has never been written.
// Callers that can start from an empty state treat this as "no data yet"
// rather than a failure.
var ErrNotFound = errors.New("bucket not found")
