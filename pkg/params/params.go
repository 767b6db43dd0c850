// Package params provides durable key/value backends for the settings store.
//
// A Backend holds flat, case-sensitive string keys mapped to string values.
// It knows nothing about option domains; validation happens in the settings
// Store that wraps it.
package params

import (
	"errors"
	"strings"
)

// ErrInvalidKey indicates an empty or whitespace key.
var ErrInvalidKey = errors.New("params: invalid key")

// Backend persists raw option values.
type Backend interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (value string, ok bool, err error)
	// Put stores value under key.
	Put(key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Keys lists stored keys sorted lexically.
	Keys() ([]string, error)
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}
