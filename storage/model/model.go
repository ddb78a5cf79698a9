// Package model contains a reference implementation of the
// transactional store. It snapshots the whole data set on every
// begin instead of keeping an undo log, which makes it slow but
// easy to trust. Tests compare the real store against it.
package model

import (
	"github.com/jrife/txnkv/storage"
)

// StorageModel models storage.Storage
type StorageModel struct {
	capacity  int
	maxDepth  int
	data      map[string]string
	snapshots []map[string]string
	// pending counts the undo actions the real store
	// would hold for each open level
	pending      []int
	lastResponse interface{}
}

// NewStorageModel creates an empty model with the given limits
func NewStorageModel(capacity, maxDepth int) *StorageModel {
	return &StorageModel{
		capacity:  capacity,
		maxDepth:  maxDepth,
		data:      map[string]string{},
		snapshots: []map[string]string{},
		pending:   []int{},
	}
}

// Depth returns the number of open transactions
func (model *StorageModel) Depth() int {
	return len(model.snapshots)
}

// Pending returns the number of undo actions the store would hold
func (model *StorageModel) Pending() int {
	total := 0

	for _, n := range model.pending {
		total += n
	}

	return total
}

// Data returns a copy of the current key-value pairs
func (model *StorageModel) Data() map[string]string {
	return copyMap(model.data)
}

// LastResponse returns the response of the last applied operation
func (model *StorageModel) LastResponse() interface{} {
	return model.lastResponse
}

// Get models Storage.Get
func (model *StorageModel) Get(key string) Lookup {
	value, ok := model.data[key]
	model.lastResponse = Lookup{Value: value, OK: ok}

	return model.lastResponse.(Lookup)
}

// Count models Storage.Count
func (model *StorageModel) Count(value string) int {
	count := 0

	for _, v := range model.data {
		if v == value {
			count++
		}
	}

	model.lastResponse = count

	return count
}

// Set models Storage.Set
func (model *StorageModel) Set(key, value string) Mutation {
	previous, existed := model.data[key]
	response := Mutation{Previous: previous, Existed: existed}

	if !existed || previous != value {
		if err := model.record(); err != nil {
			response.Err = err
		} else {
			model.data[key] = value
		}
	}

	model.lastResponse = response

	return response
}

// Delete models Storage.Delete
func (model *StorageModel) Delete(key string) Mutation {
	previous, existed := model.data[key]
	response := Mutation{Previous: previous, Existed: existed}

	if existed {
		if err := model.record(); err != nil {
			response.Err = err
		} else {
			delete(model.data, key)
		}
	}

	model.lastResponse = response

	return response
}

// BeginTransaction models Storage.BeginTransaction
func (model *StorageModel) BeginTransaction() Transition {
	if model.Depth() >= model.maxDepth {
		return model.transition(storage.ErrDepthExceeded)
	}

	model.snapshots = append(model.snapshots, copyMap(model.data))
	model.pending = append(model.pending, 0)

	return model.transition(nil)
}

// CommitTransaction models Storage.CommitTransaction
func (model *StorageModel) CommitTransaction() Transition {
	if model.Depth() == 0 {
		return model.transition(storage.ErrNoTransaction)
	}

	last := len(model.snapshots) - 1
	committed := model.pending[last]
	model.snapshots = model.snapshots[:last]
	model.pending = model.pending[:last]

	if last > 0 {
		model.pending[last-1] += committed
	}

	return model.transition(nil)
}

// RollbackTransaction models Storage.RollbackTransaction
func (model *StorageModel) RollbackTransaction() Transition {
	if model.Depth() == 0 {
		return model.transition(storage.ErrNoTransaction)
	}

	last := len(model.snapshots) - 1
	model.data = model.snapshots[last]
	model.snapshots = model.snapshots[:last]
	model.pending = model.pending[:last]

	return model.transition(nil)
}

func (model *StorageModel) record() error {
	if model.Depth() == 0 {
		return nil
	}

	if model.Pending() >= model.capacity {
		return storage.ErrCapacityExceeded
	}

	model.pending[len(model.pending)-1]++

	return nil
}

func (model *StorageModel) transition(err error) Transition {
	response := Transition{Depth: model.Depth(), Err: err}
	model.lastResponse = response

	return response
}

func copyMap(m map[string]string) map[string]string {
	c := make(map[string]string, len(m))

	for k, v := range m {
		c[k] = v
	}

	return c
}
