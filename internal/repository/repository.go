// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, memory) inside this directory.
package repository

import "errors"

// ErrNotFound is returned when no record matches the lookup predicate.
var ErrNotFound = errors.New("record not found")
