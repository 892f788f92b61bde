package main

const historyCapacity = 10

// History keeps submitted command lines, most recent first. cursor is -1
// while the live buffer is being edited, otherwise the recalled index.
type History struct {
	entries [][]byte
	cursor  int
}

func NewHistory() *History {
	return &History{cursor: -1}
}

// Push records line unless it repeats the newest entry. The oldest entry is
// evicted once the history is full. The cursor returns to live either way.
func (h *History) Push(line []byte) bool {
	h.cursor = -1
	if len(line) == 0 {
		return false
	}
	if len(h.entries) > 0 && string(h.entries[0]) == string(line) {
		return false
	}
	entry := append([]byte(nil), line...)
	if len(h.entries) == historyCapacity {
		h.entries = h.entries[:historyCapacity-1]
	}
	h.entries = append(h.entries, nil)
	copy(h.entries[1:], h.entries)
	h.entries[0] = entry
	return true
}

// Up moves to the next older entry and returns it. It saturates at the
// oldest entry and reports false when nothing changed.
func (h *History) Up() ([]byte, bool) {
	if h.cursor+1 >= len(h.entries) {
		return nil, false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

// Down moves to the next newer entry. From the newest entry it returns to
// live, reported as a nil entry with ok true. Already live is a no-op.
func (h *History) Down() ([]byte, bool) {
	if h.cursor < 0 {
		return nil, false
	}
	h.cursor--
	if h.cursor < 0 {
		return nil, true
	}
	return h.entries[h.cursor], true
}

func (h *History) Cursor() int { return h.cursor }
func (h *History) Len() int    { return len(h.entries) }
func (h *History) Live() bool  { return h.cursor < 0 }

// Entries returns copies of the stored lines, most recent first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	for i, e := range h.entries {
		out[i] = string(e)
	}
	return out
}
