package undo

type node struct {
	action Action
	prev   *node
	next   *node
}

// Log is the undo history of a single transaction level,
// oldest action first. It is a doubly linked list bounded
// by sentinel nodes so that the full contents of another
// log can be moved onto its tail in constant time.
type Log struct {
	head *node
	tail *node
	size int
}

// NewLog creates an empty log
func NewLog() *Log {
	log := &Log{}
	log.reset()

	return log
}

func (log *Log) reset() {
	log.head = &node{}
	log.tail = &node{}
	log.head.next = log.tail
	log.tail.prev = log.head
	log.size = 0
}

// Len returns the number of actions in the log
func (log *Log) Len() int {
	return log.size
}

// Append adds action to the tail of the log
func (log *Log) Append(action Action) {
	n := &node{action: action, prev: log.tail.prev, next: log.tail}
	log.tail.prev.next = n
	log.tail.prev = n
	log.size++
}

// Splice moves every action of other onto the tail of log,
// preserving their order, and leaves other empty. It does
// not depend on the size of either log. Splicing a log
// onto itself has no effect.
func (log *Log) Splice(other *Log) {
	if other == log {
		return
	}

	// The old tail sentinel of log is dropped and the
	// tail sentinel of other takes its place.
	log.tail.prev.next = other.head.next
	other.head.next.prev = log.tail.prev
	log.tail = other.tail
	log.size += other.size

	other.reset()
}

// ForEachReverse calls fn for every action from the newest
// to the oldest
func (log *Log) ForEachReverse(fn func(action Action)) {
	for n := log.tail.prev; n != log.head; n = n.prev {
		fn(n.action)
	}
}

// Actions returns a copy of the actions in the log, oldest first
func (log *Log) Actions() []Action {
	actions := make([]Action, 0, log.size)

	for n := log.head.next; n != log.tail; n = n.next {
		actions = append(actions, n.action)
	}

	return actions
}
