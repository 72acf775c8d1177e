package store

import "errors"

// ErrCBUNotFound is returned by operations that require an existing CBU
// (such as AssignRole) when the referenced cbuID has no row.
var ErrCBUNotFound = errors.New("store: cbu not found")
