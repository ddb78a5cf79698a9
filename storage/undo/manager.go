package undo

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/stacks/arraystack"
)

var (
	// ErrInvalidConfig is returned when a manager is created
	// with a non-positive capacity or depth
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrDepthExceeded is returned by Begin when the maximum
	// number of nested transactions are already open
	ErrDepthExceeded = errors.New("maximum transaction depth reached")
	// ErrCapacityExceeded is returned by Record when accepting
	// the action would hold more pending actions than the capacity allows
	ErrCapacityExceeded = errors.New("maximum transaction capacity reached")
	// ErrNoTransaction is returned by Commit and Rollback when
	// no transaction is open
	ErrNoTransaction = errors.New("no transaction")
)

// Manager owns the stack of undo logs for the currently open
// nested transactions. The bottom of the stack is the outermost
// transaction. pending is the number of actions held across all
// open levels and never exceeds capacity. Manager is not safe
// for concurrent use.
type Manager struct {
	capacity int
	maxDepth int
	pending  int
	logs     *arraystack.Stack
}

// NewManager creates a manager that holds at most capacity pending
// actions and at most maxDepth open transactions
func NewManager(capacity, maxDepth int) (*Manager, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: transaction log capacity should be greater than 0, got %d", ErrInvalidConfig, capacity)
	}

	if maxDepth <= 0 {
		return nil, fmt.Errorf("%w: maximum transaction depth should be greater than 0, got %d", ErrInvalidConfig, maxDepth)
	}

	return &Manager{
		capacity: capacity,
		maxDepth: maxDepth,
		logs:     arraystack.New(),
	}, nil
}

// Capacity returns the maximum number of pending actions
func (manager *Manager) Capacity() int {
	return manager.capacity
}

// MaxDepth returns the maximum number of open transactions
func (manager *Manager) MaxDepth() int {
	return manager.maxDepth
}

// Depth returns the number of open transactions
func (manager *Manager) Depth() int {
	return manager.logs.Size()
}

// Pending returns the number of actions held across all
// open transactions
func (manager *Manager) Pending() int {
	return manager.pending
}

// Begin opens a nested transaction and returns the new depth
func (manager *Manager) Begin() (int, error) {
	if manager.logs.Size() >= manager.maxDepth {
		return manager.logs.Size(), ErrDepthExceeded
	}

	manager.logs.Push(NewLog())

	return manager.logs.Size(), nil
}

// Record adds action to the log of the innermost open transaction.
// With no open transaction the mutation is irrevocable and Record
// does nothing. If Record returns an error the action was not
// recorded and the caller must not apply the mutation it describes.
func (manager *Manager) Record(action Action) error {
	top, ok := manager.top()

	if !ok {
		return nil
	}

	if manager.pending >= manager.capacity {
		return ErrCapacityExceeded
	}

	top.Append(action)
	manager.pending++

	return nil
}

// Commit closes the innermost transaction and returns the new depth.
// Its actions become part of the parent transaction's log, after the
// parent's own actions. Committing the outermost transaction discards
// its actions since they can no longer be undone.
func (manager *Manager) Commit() (int, error) {
	log, ok := manager.pop()

	if !ok {
		return 0, ErrNoTransaction
	}

	if parent, ok := manager.top(); ok {
		parent.Splice(log)
	} else {
		manager.pending -= log.Len()
	}

	return manager.logs.Size(), nil
}

// Rollback closes the innermost transaction, calling apply for each of
// its actions from the newest to the oldest, and returns the new depth.
func (manager *Manager) Rollback(apply func(action Action)) (int, error) {
	log, ok := manager.pop()

	if !ok {
		return 0, ErrNoTransaction
	}

	log.ForEachReverse(apply)
	manager.pending -= log.Len()

	return manager.logs.Size(), nil
}

func (manager *Manager) top() (*Log, bool) {
	value, ok := manager.logs.Peek()

	if !ok {
		return nil, false
	}

	return value.(*Log), true
}

func (manager *Manager) pop() (*Log, bool) {
	value, ok := manager.logs.Pop()

	if !ok {
		return nil, false
	}

	return value.(*Log), true
}
