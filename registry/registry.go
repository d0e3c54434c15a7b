// Package registry maps table names to their descriptors for code that only
// learns the table of a record at run time.
package registry

import (
	"fmt"
	"slices"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/sheldonrobinson/libnop/errs"
	"github.com/sheldonrobinson/libnop/table"
)

// Registry is a set of descriptors keyed by table name.
// It is safe for concurrent use.
type Registry struct {
	tables *xsync.MapOf[string, *table.Descriptor]
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{tables: xsync.NewMapOf[string, *table.Descriptor]()}
}

// Register adds desc under its table name.
//
// Registering a descriptor with the same fingerprint as the one already held
// is a no-op. A different fingerprint under the same name fails with
// errs.ErrSchemaConflict and leaves the registry unchanged.
func (r *Registry) Register(desc *table.Descriptor) error {
	if desc == nil {
		return fmt.Errorf("%w: nil descriptor", errs.ErrInvalidSchema)
	}

	held, loaded := r.tables.LoadOrStore(desc.Name(), desc)
	if loaded && held.Fingerprint() != desc.Fingerprint() {
		return fmt.Errorf("%w: %s (registered %016x, got %016x)",
			errs.ErrSchemaConflict, desc.Name(), held.Fingerprint(), desc.Fingerprint())
	}

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(descs ...*table.Descriptor) {
	for _, d := range descs {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the descriptor registered under name.
// Missing names fail with errs.ErrSchemaNotFound.
func (r *Registry) Lookup(name string) (*table.Descriptor, error) {
	desc, ok := r.tables.Load(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrSchemaNotFound, name)
	}

	return desc, nil
}

// Names returns the registered table names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.tables.Size())
	r.tables.Range(func(name string, _ *table.Descriptor) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)

	return names
}

// Len returns the number of registered tables.
func (r *Registry) Len() int {
	return r.tables.Size()
}

// Default is the process-wide registry.
var Default = New()

// Register adds desc to the Default registry.
func Register(desc *table.Descriptor) error {
	return Default.Register(desc)
}

// Lookup returns the descriptor registered under name in the Default registry.
func Lookup(name string) (*table.Descriptor, error) {
	return Default.Lookup(name)
}
