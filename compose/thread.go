package compose

// Thread is the ordered sequence of draft entries behind the composer.
// Exactly one index is active and mirrors the live editing buffer; the
// buffer is flushed into the active entry (save) before another entry is
// loaded into it. A thread never shrinks below one entry.
type Thread struct {
	entries []*Entry
	active  int
}

// NewThread starts in the single state: one blank entry, active index 0.
func NewThread() *Thread {
	return &Thread{entries: []*Entry{{}}}
}

func (t *Thread) Len() int {
	return len(t.entries)
}

func (t *Thread) Active() int {
	return t.active
}

// IsThread reports whether the composer has flipped from single-post to
// thread state.
func (t *Thread) IsThread() bool {
	return len(t.entries) > 1
}

// Entries returns the backing entries in order. The active entry's saved
// copy may lag the live buffer; call Save first when that matters.
func (t *Thread) Entries() []*Entry {
	out := make([]*Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Entry returns the entry at i, or nil when out of bounds.
func (t *Thread) Entry(i int) *Entry {
	if i < 0 || i >= len(t.entries) {
		return nil
	}
	return t.entries[i]
}

// Save flushes the live buffer into the active entry.
func (t *Thread) Save(buf *Entry) {
	t.entries[t.active].copyFrom(buf)
}

// Load replaces the live buffer's savable fields from the active entry.
func (t *Thread) Load(buf *Entry) {
	buf.copyFrom(t.entries[t.active])
}

// AddEntry saves the buffer, appends a blank entry, makes it active, and
// loads it into the buffer. Returns the new active index.
func (t *Thread) AddEntry(buf *Entry) int {
	t.Save(buf)
	t.entries = append(t.entries, &Entry{})
	t.active = len(t.entries) - 1
	t.Load(buf)
	return t.active
}

// RemoveEntry deletes the entry at i. A no-op (returning false) when i is
// out of bounds or only one entry remains. The active index is clamped
// into range; if the active entry itself was removed, the buffer is
// loaded from the entry that takes its place.
func (t *Thread) RemoveEntry(i int, buf *Entry) bool {
	if len(t.entries) <= 1 || i < 0 || i >= len(t.entries) {
		return false
	}
	wasActive := i == t.active
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	if t.active > i {
		t.active--
	} else if t.active >= len(t.entries) {
		t.active = len(t.entries) - 1
	}
	if wasActive {
		t.Load(buf)
	}
	return true
}

// SwitchTo makes entry i active: the buffer is saved into the current
// active entry, then entry i is loaded. A no-op when i is out of bounds.
// Switching to the current index still round-trips save/load, leaving the
// buffer unchanged.
func (t *Thread) SwitchTo(i int, buf *Entry) bool {
	if i < 0 || i >= len(t.entries) {
		return false
	}
	t.Save(buf)
	t.active = i
	t.Load(buf)
	return true
}
