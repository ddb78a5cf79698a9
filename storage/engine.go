package storage

import (
	"github.com/jrife/txnkv/storage/counted"
	"github.com/jrife/txnkv/storage/undo"
	"go.uber.org/zap"
)

var _ Storage = (*engine)(nil)

// engine ties the live data to the undo log. A mutation is
// recorded before it is applied so that a rejected record never
// leaves data changed.
type engine struct {
	logger *zap.Logger
	data   *counted.Map
	undo   *undo.Manager
}

func newEngine(config Config) (*engine, error) {
	manager, err := undo.NewManager(config.TransactionLogCapacity, config.MaxTransactionDepth)

	if err != nil {
		return nil, wrapError("could not create undo log manager", err)
	}

	engine := &engine{
		logger: config.Logger,
		data:   counted.New(),
		undo:   manager,
	}

	if engine.logger == nil {
		engine.logger = zap.L()
	}

	return engine, nil
}

// Get implements Storage.Get
func (engine *engine) Get(key string) (string, bool) {
	return engine.data.Get(key)
}

// Count implements Storage.Count
func (engine *engine) Count(value string) int {
	return engine.data.Count(value)
}

// Set implements Storage.Set
func (engine *engine) Set(key, value string) (string, bool, error) {
	previous, existed := engine.data.Get(key)

	// Writing the value a key already holds changes nothing
	// and is not worth a slot in the transaction log.
	if existed && previous == value {
		return previous, existed, nil
	}

	action := undo.RemoveAction(key)

	if existed {
		action = undo.SetBackAction(key, previous)
	}

	if err := engine.undo.Record(action); err != nil {
		err = wrapError("could not record set", err)
		engine.logger.Debug("set rejected", zap.String("key", key), zap.Int("pending", engine.undo.Pending()), zap.Error(err))

		return previous, existed, err
	}

	engine.data.Set(key, value)

	return previous, existed, nil
}

// Delete implements Storage.Delete
func (engine *engine) Delete(key string) (string, bool, error) {
	previous, existed := engine.data.Remove(key)

	if !existed {
		return "", false, nil
	}

	if err := engine.undo.Record(undo.SetBackAction(key, previous)); err != nil {
		engine.data.Set(key, previous)
		err = wrapError("could not record delete", err)
		engine.logger.Debug("delete rejected", zap.String("key", key), zap.Int("pending", engine.undo.Pending()), zap.Error(err))

		return previous, existed, err
	}

	return previous, existed, nil
}

// BeginTransaction implements Storage.BeginTransaction
func (engine *engine) BeginTransaction() (int, error) {
	depth, err := engine.undo.Begin()

	if err != nil {
		err = wrapError("could not begin transaction", err)
		engine.logger.Debug("begin rejected", zap.Int("depth", depth), zap.Error(err))

		return depth, err
	}

	engine.logger.Debug("begin", zap.Int("depth", depth))

	return depth, nil
}

// CommitTransaction implements Storage.CommitTransaction
func (engine *engine) CommitTransaction() (int, error) {
	depth, err := engine.undo.Commit()

	if err != nil {
		return depth, wrapError("could not commit transaction", err)
	}

	engine.logger.Debug("commit", zap.Int("depth", depth), zap.Int("pending", engine.undo.Pending()), zap.Int("keys", engine.data.Len()))

	return depth, nil
}

// RollbackTransaction implements Storage.RollbackTransaction
func (engine *engine) RollbackTransaction() (int, error) {
	depth, err := engine.undo.Rollback(engine.revert)

	if err != nil {
		return depth, wrapError("could not roll back transaction", err)
	}

	engine.logger.Debug("rollback", zap.Int("depth", depth), zap.Int("pending", engine.undo.Pending()), zap.Int("keys", engine.data.Len()))

	return depth, nil
}

func (engine *engine) revert(action undo.Action) {
	switch action.Kind {
	case undo.SetBack:
		engine.data.Set(action.Key, action.Value)
	case undo.Remove:
		engine.data.Remove(action.Key)
	}
}
