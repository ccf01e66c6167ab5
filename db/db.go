// Package db defines the durable key value store that the signer uses to
// synchronise with its future self across reboots. The store offers point
// reads and atomic write transactions; every durable write the signer
// performs is committed before the externally visible side effect it
// protects.
//
// The store may be shared between actors (for example a signer and a DKG),
// with each actor writing under a disjoint key prefix.
package db

import "errors"

// ErrKeyNotFound is returned by Get when the key is absent from the store.
var ErrKeyNotFound = errors.New("key not found")

// A DB is a durable key value store supporting atomic write transactions.
type DB interface {
	// Get returns the value stored under the given key, or ErrKeyNotFound
	// if there is none.
	Get(key []byte) ([]byte, error)

	// Txn returns a new write transaction. Writes are not visible until
	// Commit returns, and become visible atomically.
	Txn() Txn
}

// A Txn is a write transaction against a DB.
type Txn interface {
	// Put stages a write of the given value under the given key.
	Put(key, value []byte)

	// Commit atomically applies all staged writes, durably.
	Commit() error
}

// Key builds a store key by concatenating the given parts.
func Key(parts ...[]byte) []byte {
	n := 0
	for _, part := range parts {
		n += len(part)
	}
	key := make([]byte, 0, n)
	for _, part := range parts {
		key = append(key, part...)
	}
	return key
}
