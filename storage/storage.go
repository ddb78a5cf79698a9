package storage

import (
	"go.uber.org/zap"
)

const (
	// DefaultTransactionLogCapacity is the default maximum number of
	// undo actions held across all open transactions
	DefaultTransactionLogCapacity = 10000
	// DefaultMaxTransactionDepth is the default maximum number of
	// simultaneously open nested transactions
	DefaultMaxTransactionDepth = 1000
)

// Storage is a transactional key-value store. Keys and values are
// opaque strings and an unset key is distinct from an empty value.
//
// Transactions nest. Every mutation made while a transaction is open
// is recorded in an undo log so that RollbackTransaction can revert
// the innermost transaction. Committing an inner transaction folds
// its undo history into its parent; committing the outermost one
// makes its changes permanent. Mutations made with no transaction
// open cannot be reverted.
//
// The number of pending undo actions and the nesting depth are both
// bounded. A mutation that would exceed the capacity fails with
// ErrCapacityExceeded and leaves the store exactly as it was.
//
// Implementations returned by New are not safe for concurrent use.
// Use Synchronized to share one between goroutines.
type Storage interface {
	// Get returns the value for key. ok is false if key is not set.
	Get(key string) (value string, ok bool)
	// Count returns the number of keys whose value is value.
	Count(value string) int
	// Set stores value for key and returns the previous value, if any.
	// It returns ErrCapacityExceeded if the change cannot be recorded,
	// in which case nothing is changed.
	Set(key, value string) (previous string, existed bool, err error)
	// Delete removes key and returns the value it had, if any.
	// It returns ErrCapacityExceeded if the change cannot be recorded,
	// in which case nothing is changed.
	Delete(key string) (previous string, existed bool, err error)
	// BeginTransaction opens a nested transaction and returns the
	// new depth. It returns ErrDepthExceeded if the maximum depth is
	// already reached.
	BeginTransaction() (int, error)
	// CommitTransaction closes the innermost transaction keeping its
	// changes and returns the new depth. It returns ErrNoTransaction
	// if no transaction is open.
	CommitTransaction() (int, error)
	// RollbackTransaction closes the innermost transaction reverting
	// its changes and returns the new depth. It returns ErrNoTransaction
	// if no transaction is open.
	RollbackTransaction() (int, error)
}

// Config contains configuration for a store
type Config struct {
	// TransactionLogCapacity is the maximum number of undo actions
	// held across all open transactions. Must be positive.
	TransactionLogCapacity int
	// MaxTransactionDepth is the maximum number of simultaneously
	// open transactions. Must be positive.
	MaxTransactionDepth int
	// Logger is used for debug logging. zap.L() is used if nil.
	Logger *zap.Logger
}

// DefaultConfig returns a config with the default limits
func DefaultConfig() Config {
	return Config{
		TransactionLogCapacity: DefaultTransactionLogCapacity,
		MaxTransactionDepth:    DefaultMaxTransactionDepth,
	}
}

// New creates an in-memory store. It returns an error wrapping
// ErrInvalidConfig if either limit in config is not positive.
func New(config Config) (Storage, error) {
	engine, err := newEngine(config)

	if err != nil {
		return nil, err
	}

	return engine, nil
}
