package storage

import (
	"sync"

	"github.com/google/uuid"
)

// SessionID is implemented by sessions of a SynchronizedStorage
type SessionID interface {
	// ID returns the identifier of the session
	ID() string
}

// SynchronizedStorage guards a Storage with a single reader-writer
// lock. Reads share the lock, writes hold it exclusively for the
// duration of the call and an open transaction holds it exclusively
// from BeginTransaction until the matching outermost commit or
// rollback. While a transaction is open no other session can read,
// write or start a transaction.
//
// A transaction belongs to the session that began it. Goroutines
// that share the store should each use their own session.
type SynchronizedStorage struct {
	storage Storage
	// rw guards storage. While a transaction is open the
	// write lock is held on behalf of owner.
	rw sync.RWMutex
	// mu guards owner and holds
	mu    sync.Mutex
	owner string
	holds int
}

// Synchronized returns a thread-safe decorator for storage.
// storage must not be used directly afterwards.
func Synchronized(storage Storage) *SynchronizedStorage {
	return &SynchronizedStorage{storage: storage}
}

// Session returns a new handle to the store with its own identity.
// A session must not be used by more than one goroutine at a time.
func (store *SynchronizedStorage) Session() Storage {
	return &session{id: uuid.New().String(), store: store}
}

// Owner returns the ID of the session whose transaction currently
// holds the lock. ok is false if no transaction is open.
func (store *SynchronizedStorage) Owner() (id string, ok bool) {
	store.mu.Lock()
	defer store.mu.Unlock()

	return store.owner, store.holds > 0
}

func (store *SynchronizedStorage) owns(id string) bool {
	store.mu.Lock()
	defer store.mu.Unlock()

	return store.holds > 0 && store.owner == id
}

// acquire records id as the owner of the write lock, which the
// caller must already hold
func (store *SynchronizedStorage) acquire(id string) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.owner = id
	store.holds = 1
}

func (store *SynchronizedStorage) reenter() {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.holds++
}

// release drops one hold and reports whether it was the last,
// in which case the caller must unlock rw
func (store *SynchronizedStorage) release() bool {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.holds--

	if store.holds > 0 {
		return false
	}

	store.owner = ""
	store.holds = 0

	return true
}

var _ Storage = (*session)(nil)
var _ SessionID = (*session)(nil)

type session struct {
	id    string
	store *SynchronizedStorage
}

// ID implements SessionID.ID
func (session *session) ID() string {
	return session.id
}

// Get implements Storage.Get
func (session *session) Get(key string) (string, bool) {
	if session.store.owns(session.id) {
		return session.store.storage.Get(key)
	}

	session.store.rw.RLock()
	defer session.store.rw.RUnlock()

	return session.store.storage.Get(key)
}

// Count implements Storage.Count
func (session *session) Count(value string) int {
	if session.store.owns(session.id) {
		return session.store.storage.Count(value)
	}

	session.store.rw.RLock()
	defer session.store.rw.RUnlock()

	return session.store.storage.Count(value)
}

// Set implements Storage.Set
func (session *session) Set(key, value string) (string, bool, error) {
	if session.store.owns(session.id) {
		return session.store.storage.Set(key, value)
	}

	session.store.rw.Lock()
	defer session.store.rw.Unlock()

	return session.store.storage.Set(key, value)
}

// Delete implements Storage.Delete
func (session *session) Delete(key string) (string, bool, error) {
	if session.store.owns(session.id) {
		return session.store.storage.Delete(key)
	}

	session.store.rw.Lock()
	defer session.store.rw.Unlock()

	return session.store.storage.Delete(key)
}

// BeginTransaction implements Storage.BeginTransaction. The write
// lock stays held after it returns successfully.
func (session *session) BeginTransaction() (int, error) {
	if session.store.owns(session.id) {
		depth, err := session.store.storage.BeginTransaction()

		if err == nil {
			session.store.reenter()
		}

		return depth, err
	}

	session.store.rw.Lock()
	depth, err := session.store.storage.BeginTransaction()

	if err != nil {
		session.store.rw.Unlock()

		return depth, err
	}

	session.store.acquire(session.id)

	return depth, nil
}

// CommitTransaction implements Storage.CommitTransaction
func (session *session) CommitTransaction() (int, error) {
	return session.close(session.store.storage.CommitTransaction)
}

// RollbackTransaction implements Storage.RollbackTransaction
func (session *session) RollbackTransaction() (int, error) {
	return session.close(session.store.storage.RollbackTransaction)
}

func (session *session) close(fn func() (int, error)) (int, error) {
	if !session.store.owns(session.id) {
		if _, open := session.store.Owner(); open {
			return 0, ErrLockNotOwned
		}

		// Nothing is open. Let the store report it
		// without racing a concurrent begin.
		session.store.rw.Lock()
		defer session.store.rw.Unlock()

		return fn()
	}

	depth, err := fn()

	if err != nil {
		return depth, err
	}

	if session.store.release() {
		session.store.rw.Unlock()
	}

	return depth, nil
}
