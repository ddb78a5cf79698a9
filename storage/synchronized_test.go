package storage_test

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jrife/txnkv/storage"
)

func newSynchronized(t testing.TB) *storage.SynchronizedStorage {
	return storage.Synchronized(newStorage(t, 10000, 1000))
}

func TestSynchronizedReadBlocksDuringTransaction(t *testing.T) {
	store := newSynchronized(t)
	writer := store.Session()
	reader := store.Session()

	mustSet(t, writer, "foo", "0")
	mustDepth(t, 1)(writer.BeginTransaction())
	mustSet(t, writer, "foo", "1")
	expectValue(t, writer, "foo", "1")

	result := make(chan string)

	go func() {
		value, _ := reader.Get("foo")
		result <- value
	}()

	select {
	case value := <-result:
		t.Fatalf("expected read to block until commit, got %q", value)
	case <-time.After(50 * time.Millisecond):
	}

	mustDepth(t, 0)(writer.CommitTransaction())

	select {
	case value := <-result:
		if value != "1" {
			t.Fatalf("expected reader to see committed value 1, got %q", value)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("reader never unblocked")
	}
}

func TestSynchronizedWritesBlockDuringTransaction(t *testing.T) {
	store := newSynchronized(t)
	owner := store.Session()
	writer := store.Session()
	other := store.Session()

	mustDepth(t, 1)(owner.BeginTransaction())

	written := make(chan error, 1)
	began := make(chan error, 1)

	go func() {
		_, _, err := writer.Set("k", "x")
		written <- err
	}()

	go func() {
		if _, err := other.BeginTransaction(); err != nil {
			began <- err

			return
		}

		_, err := other.CommitTransaction()
		began <- err
	}()

	select {
	case <-written:
		t.Fatalf("expected set to block until commit")
	case <-began:
		t.Fatalf("expected begin to block until commit")
	case <-time.After(100 * time.Millisecond):
	}

	mustSet(t, owner, "k", "owner")
	mustDepth(t, 0)(owner.CommitTransaction())

	for _, done := range []chan error{written, began} {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("expected err to be nil, got %#v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("blocked call never returned")
		}
	}

	expectValue(t, store.Session(), "k", "x")
}

func TestSynchronizedOwner(t *testing.T) {
	store := newSynchronized(t)
	s := store.Session()

	if _, ok := store.Owner(); ok {
		t.Fatalf("expected no owner before a transaction")
	}

	mustDepth(t, 1)(s.BeginTransaction())
	mustDepth(t, 2)(s.BeginTransaction())

	owner, ok := store.Owner()

	if !ok || owner != s.(storage.SessionID).ID() {
		t.Fatalf("expected owner to be %s, got (%s, %v)", s.(storage.SessionID).ID(), owner, ok)
	}

	mustDepth(t, 1)(s.RollbackTransaction())

	if _, ok := store.Owner(); !ok {
		t.Fatalf("expected inner rollback to keep the lock")
	}

	mustDepth(t, 0)(s.CommitTransaction())

	if _, ok := store.Owner(); ok {
		t.Fatalf("expected outermost commit to release the lock")
	}
}

func TestSynchronizedSessionsAreDistinct(t *testing.T) {
	store := newSynchronized(t)
	a := store.Session().(storage.SessionID).ID()
	b := store.Session().(storage.SessionID).ID()

	if a == "" || a == b {
		t.Fatalf("expected distinct session IDs, got %q and %q", a, b)
	}
}

func TestSynchronizedForeignClose(t *testing.T) {
	store := newSynchronized(t)
	owner := store.Session()
	other := store.Session()

	mustDepth(t, 1)(owner.BeginTransaction())
	mustSet(t, owner, "foo", "1")

	if _, err := other.CommitTransaction(); err != storage.ErrLockNotOwned {
		t.Fatalf("expected err to be %#v, got %#v", storage.ErrLockNotOwned, err)
	}

	if _, err := other.RollbackTransaction(); err != storage.ErrLockNotOwned {
		t.Fatalf("expected err to be %#v, got %#v", storage.ErrLockNotOwned, err)
	}

	mustDepth(t, 0)(owner.RollbackTransaction())
	expectUnset(t, other, "foo")
}

func TestSynchronizedNoTransaction(t *testing.T) {
	store := newSynchronized(t)
	s := store.Session()

	if _, err := s.CommitTransaction(); err != storage.ErrNoTransaction {
		t.Fatalf("expected err to be %#v, got %#v", storage.ErrNoTransaction, err)
	}

	if _, err := s.RollbackTransaction(); err != storage.ErrNoTransaction {
		t.Fatalf("expected err to be %#v, got %#v", storage.ErrNoTransaction, err)
	}

	// The lock must still be usable afterwards
	mustSet(t, s, "foo", "1")
	mustDepth(t, 1)(s.BeginTransaction())
	mustDepth(t, 0)(s.CommitTransaction())
}

func TestSynchronizedBeginRejectedReleasesLock(t *testing.T) {
	store := storage.Synchronized(newStorage(t, 10, 1))
	s := store.Session()
	other := store.Session()

	mustDepth(t, 1)(s.BeginTransaction())

	if _, err := s.BeginTransaction(); err != storage.ErrDepthExceeded {
		t.Fatalf("expected err to be %#v, got %#v", storage.ErrDepthExceeded, err)
	}

	mustDepth(t, 0)(s.CommitTransaction())

	if _, ok := store.Owner(); ok {
		t.Fatalf("expected rejected begin not to take a hold")
	}

	mustSet(t, other, "foo", "1")
}

func TestSynchronizedConcurrentTransactions(t *testing.T) {
	const workers = 10
	const iterations = 100

	store := newSynchronized(t)
	mustSet(t, store.Session(), "counter", "0")

	var wg sync.WaitGroup
	errs := make(chan error, workers*iterations)

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			s := store.Session()

			for j := 0; j < iterations; j++ {
				// Three nested levels committed in turn
				for k := 0; k < 3; k++ {
					if _, err := s.BeginTransaction(); err != nil {
						errs <- err

						return
					}
				}

				value, _ := s.Get("counter")
				n, _ := strconv.Atoi(value)

				if _, _, err := s.Set("counter", strconv.Itoa(n+1)); err != nil {
					errs <- err

					return
				}

				for k := 0; k < 3; k++ {
					if _, err := s.CommitTransaction(); err != nil {
						errs <- err

						return
					}
				}
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	expectValue(t, store.Session(), "counter", strconv.Itoa(workers*iterations))
}

func TestSynchronizedConcurrentRollbacks(t *testing.T) {
	const workers = 10
	const iterations = 50

	store := newSynchronized(t)
	mustSet(t, store.Session(), "foo", "base")

	var wg sync.WaitGroup
	failures := make(chan string, workers*iterations)

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			s := store.Session()
			reader := store.Session()

			for j := 0; j < iterations; j++ {
				if value, _ := reader.Get("foo"); value != "base" {
					failures <- value
				}

				s.BeginTransaction()
				s.Set("foo", strconv.Itoa(i))
				s.Delete("bar")
				s.Set("bar", strconv.Itoa(j))
				s.RollbackTransaction()
			}
		}(i)
	}

	wg.Wait()
	close(failures)

	for value := range failures {
		t.Fatalf("expected readers to only observe base, got %q", value)
	}

	expectValue(t, store.Session(), "foo", "base")
	expectUnset(t, store.Session(), "bar")
}
