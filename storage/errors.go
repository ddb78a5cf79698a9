package storage

import (
	"errors"
	"fmt"

	"github.com/jrife/txnkv/storage/undo"
)

var (
	// ErrInvalidConfig is returned by New when the configured
	// limits are not positive
	ErrInvalidConfig = undo.ErrInvalidConfig
	// ErrDepthExceeded is returned when a transaction is started
	// while the maximum number of nested transactions are open
	ErrDepthExceeded = errors.New("maximum transaction depth reached")
	// ErrCapacityExceeded is returned when a mutation would hold
	// more undo actions than the transaction log capacity allows
	ErrCapacityExceeded = errors.New("maximum transaction capacity reached")
	// ErrNoTransaction is returned when a transaction is committed
	// or rolled back while none is open
	ErrNoTransaction = errors.New("no transaction")
	// ErrLockNotOwned is returned when a session tries to close a
	// transaction that was opened by another session
	ErrLockNotOwned = errors.New("transaction lock is held by another session")
)

func wrapError(wrap string, err error) error {
	switch err {
	case undo.ErrDepthExceeded:
		return ErrDepthExceeded
	case undo.ErrCapacityExceeded:
		return ErrCapacityExceeded
	case undo.ErrNoTransaction:
		return ErrNoTransaction
	case nil:
		return nil
	}

	return fmt.Errorf("%s: %w", wrap, err)
}
