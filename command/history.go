package command

// History is the append-only log of dispatched command text plus a recall
// cursor. Moving the cursor never changes the log.
type History struct {
	entries []string
	cursor  int
}

func NewHistory() *History {
	return &History{cursor: -1}
}

// Append records text and resets the cursor past the newest entry.
func (h *History) Append(text string) {
	h.entries = append(h.entries, text)
	h.cursor = -1
}

// Clear empties the log.
func (h *History) Clear() {
	h.entries = nil
	h.cursor = -1
}

// Entries returns a copy of the log, oldest first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Len() int {
	return len(h.entries)
}

// Up steps towards older entries and returns the text to show. ok is false
// when there is nothing to recall.
func (h *History) Up() (text string, ok bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.cursor == -1 {
		h.cursor = len(h.entries) - 1
	} else {
		h.cursor = max(0, h.cursor-1)
	}
	return h.entries[h.cursor], true
}

// Down steps towards newer entries. Stepping past the newest entry returns
// an empty input. ok is false when the cursor is not in the log.
func (h *History) Down() (text string, ok bool) {
	if h.cursor == -1 {
		return "", false
	}
	if h.cursor >= len(h.entries)-1 {
		h.cursor = -1
		return "", true
	}
	h.cursor++
	return h.entries[h.cursor], true
}
