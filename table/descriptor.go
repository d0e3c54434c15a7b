package table

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/sheldonrobinson/libnop/errs"
	"github.com/sheldonrobinson/libnop/internal/collision"
	"github.com/sheldonrobinson/libnop/internal/hash"
)

// FieldID permanently identifies one field of a table. An id is never reused,
// even after the field is retired.
type FieldID uint64

// State is the lifecycle state of a field.
type State uint8

const (
	// Active fields may hold a value.
	Active State = iota
	// Retired fields never hold a value. Their id stays reserved and data
	// carrying it is discarded on decode.
	Retired
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Retired:
		return "retired"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// FieldDesc describes one field of a table.
type FieldDesc struct {
	ID    FieldID
	Name  string
	Type  TypeTag
	State State
}

func (f FieldDesc) String() string {
	s := fmt.Sprintf("%d:%s", f.ID, f.Type)
	if f.Name != "" {
		s = f.Name + "=" + s
	}
	if f.State == Retired {
		s += " (retired)"
	}

	return s
}

// Descriptor is the immutable field list of a named table type.
//
// Fields are kept in ascending id order, which is also the order the
// encoder writes them in. A Descriptor is safe for concurrent use.
type Descriptor struct {
	name        string
	fields      []FieldDesc
	codecs      []anyCodec
	byID        map[FieldID]int
	byName      map[string]int
	fingerprint uint64
}

// NewDescriptor validates fields and builds the descriptor of table name.
//
// Errors:
//   - errs.ErrInvalidSchema for an empty table name, an invalid state or an unsupported type
//   - errs.ErrDuplicateFieldID if two fields share an id
//   - errs.ErrDuplicateFieldName if two fields share a non-empty name
func NewDescriptor(name string, fields ...FieldDesc) (*Descriptor, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty table name", errs.ErrInvalidSchema)
	}

	tracker := collision.NewTracker()
	for _, f := range fields {
		if err := tracker.TrackField(uint64(f.ID), f.Name); err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		if f.State != Active && f.State != Retired {
			return nil, fmt.Errorf("%w: table %s field %d: %s", errs.ErrInvalidSchema, name, f.ID, f.State)
		}
		if err := f.Type.validate(); err != nil {
			return nil, fmt.Errorf("table %s field %d: %w", name, f.ID, err)
		}
	}

	d := &Descriptor{
		name:   name,
		fields: slices.Clone(fields),
		byID:   make(map[FieldID]int, len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	slices.SortFunc(d.fields, func(a, b FieldDesc) int { return cmp.Compare(a.ID, b.ID) })

	d.codecs = make([]anyCodec, len(d.fields))
	parts := make([]string, 0, len(d.fields)+1)
	parts = append(parts, name)
	for i, f := range d.fields {
		d.byID[f.ID] = i
		if f.Name != "" {
			d.byName[f.Name] = i
		}
		codec, err := codecFor(f.Type)
		if err != nil {
			return nil, fmt.Errorf("table %s field %d: %w", name, f.ID, err)
		}
		d.codecs[i] = codec
		parts = append(parts, strconv.FormatUint(uint64(f.ID), 10)+":"+f.Type.String()+":"+f.State.String())
	}
	d.fingerprint = hash.Fingerprint(parts...)

	return d, nil
}

// Name returns the table name.
func (d *Descriptor) Name() string {
	return d.name
}

// Entries returns the fields in ascending id order.
// The returned slice is a copy.
func (d *Descriptor) Entries() []FieldDesc {
	return slices.Clone(d.fields)
}

// Len returns the number of declared fields, retired ones included.
func (d *Descriptor) Len() int {
	return len(d.fields)
}

// Lookup returns the field declared with id.
// The second result is false for an id this table never declared.
func (d *Descriptor) Lookup(id FieldID) (FieldDesc, bool) {
	i, ok := d.byID[id]
	if !ok {
		return FieldDesc{}, false
	}

	return d.fields[i], true
}

// LookupName returns the field declared with name.
func (d *Descriptor) LookupName(name string) (FieldDesc, bool) {
	i, ok := d.byName[name]
	if !ok {
		return FieldDesc{}, false
	}

	return d.fields[i], true
}

// Fingerprint returns a hash of the table name and every (id, type, state)
// triple. Field names do not contribute.
func (d *Descriptor) Fingerprint() uint64 {
	return d.fingerprint
}

func (d *Descriptor) String() string {
	var sb strings.Builder
	sb.WriteString(d.name)
	sb.WriteByte('{')
	for i, f := range d.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.String())
	}
	sb.WriteByte('}')

	return sb.String()
}

func (d *Descriptor) index(id uint64) (int, bool) {
	i, ok := d.byID[FieldID(id)]
	return i, ok
}
