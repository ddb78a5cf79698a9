package counted

// Map is a string to string map that also tracks how many
// keys currently hold each value so that Count is O(1).
// For every value v present in counts, counts[v] is the number
// of keys mapped to v. Values whose count drops to zero are
// removed from counts. Map is not safe for concurrent use.
type Map struct {
	data   map[string]string
	counts map[string]int
}

// New creates an empty Map
func New() *Map {
	return &Map{
		data:   make(map[string]string),
		counts: make(map[string]int),
	}
}

// Get returns the value stored for key. ok is false
// if key is not set.
func (m *Map) Get(key string) (value string, ok bool) {
	value, ok = m.data[key]

	return value, ok
}

// Set stores value for key, overwriting any existing value.
// It returns the previous value and whether there was one.
func (m *Map) Set(key, value string) (previous string, existed bool) {
	previous, existed = m.data[key]
	m.data[key] = value

	if existed {
		m.decrement(previous)
	}

	m.counts[value]++

	return previous, existed
}

// Remove deletes key. It returns the removed value and
// whether key was set.
func (m *Map) Remove(key string) (removed string, existed bool) {
	removed, existed = m.data[key]

	if !existed {
		return "", false
	}

	delete(m.data, key)
	m.decrement(removed)

	return removed, true
}

// Count returns the number of keys whose value is value
func (m *Map) Count(value string) int {
	return m.counts[value]
}

// Len returns the number of keys that are set
func (m *Map) Len() int {
	return len(m.data)
}

func (m *Map) decrement(value string) {
	if m.counts[value] <= 1 {
		delete(m.counts, value)

		return
	}

	m.counts[value]--
}
