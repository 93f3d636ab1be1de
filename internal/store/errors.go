package store

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrSourceNotFound = errors.New("source not found")
	ErrDuplicateItem  = errors.New("duplicate item")
)
