// Package collision detects field id and field name reuse while a table
// descriptor is being registered.
package collision

import (
	"fmt"

	"github.com/sheldonrobinson/libnop/errs"
)

// Tracker records the field ids and names declared for one table.
type Tracker struct {
	ids   map[uint64]string // id -> name of the field that claimed it
	names map[string]uint64 // name -> id, only non-empty names
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		ids:   make(map[uint64]string),
		names: make(map[string]uint64),
	}
}

// TrackField records a field declaration.
//
// Returns:
//   - errs.ErrDuplicateFieldID if id was already declared
//   - errs.ErrDuplicateFieldName if a different id already uses name
//
// Empty names are never considered duplicates.
func (t *Tracker) TrackField(id uint64, name string) error {
	if prev, exists := t.ids[id]; exists {
		return fmt.Errorf("%w: %d (declared as %q and %q)", errs.ErrDuplicateFieldID, id, prev, name)
	}
	if name != "" {
		if prevID, exists := t.names[name]; exists {
			return fmt.Errorf("%w: %q (ids %d and %d)", errs.ErrDuplicateFieldName, name, prevID, id)
		}
		t.names[name] = id
	}
	t.ids[id] = name

	return nil
}
