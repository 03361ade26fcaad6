package completion

import (
	"github.com/dalemusser/profilecompletion/internal/app/system/fieldkeys"
	"github.com/dalemusser/profilecompletion/internal/app/system/profilefield"
)

// Entry is one configured field that is empty for the evaluated user.
type Entry struct {
	Key   fieldkeys.Key
	Kind  fieldkeys.Kind
	Name  string // core field name or custom shortname
	Label string

	// Field is set for custom entries and carries the catalog entry and
	// the user's stored value as they were when the entry was computed.
	Field *profilefield.Descriptor
}

// Missing is an ordered set of entries keyed by the key's text form.
// The zero value is an empty set.
type Missing struct {
	entries []Entry
	index   map[string]int
}

func (m *Missing) add(e Entry) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	k := e.Key.String()
	if _, dup := m.index[k]; dup {
		return
	}
	m.index[k] = len(m.entries)
	m.entries = append(m.entries, e)
}

// Len returns the number of missing fields.
func (m Missing) Len() int { return len(m.entries) }

// Empty reports whether nothing is missing.
func (m Missing) Empty() bool { return len(m.entries) == 0 }

// Has reports whether key (text form) is missing.
func (m Missing) Has(key string) bool {
	_, ok := m.index[key]
	return ok
}

// Get returns the entry for key (text form).
func (m Missing) Get(key string) (Entry, bool) {
	i, ok := m.index[key]
	if !ok {
		return Entry{}, false
	}
	return m.entries[i], true
}

// Entries returns the entries in configuration order.
func (m Missing) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Keys returns the text form of each missing key in configuration order.
func (m Missing) Keys() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Key.String()
	}
	return out
}
