// Package schemafile reads table descriptors from TOML files.
//
// A file declares any number of tables:
//
//	[[table]]
//	name = "TableA"
//
//	  [[table.field]]
//	  id = 0
//	  name = "a"
//	  type = "string"
//
//	  [[table.field]]
//	  id = 1
//	  name = "b"
//	  type = "sequence<int>"
//	  retired = true
//
// Type names are those accepted by table.ParseTypeTag. Unknown keys are
// rejected so a typo never silently drops a field attribute.
package schemafile

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sheldonrobinson/libnop/errs"
	"github.com/sheldonrobinson/libnop/registry"
	"github.com/sheldonrobinson/libnop/table"
)

type fileConfig struct {
	Tables []tableConfig `toml:"table"`
}

type tableConfig struct {
	Name   string        `toml:"name"`
	Fields []fieldConfig `toml:"field"`
}

type fieldConfig struct {
	ID      *int64 `toml:"id"`
	Name    string `toml:"name"`
	Type    string `toml:"type"`
	Retired bool   `toml:"retired"`
}

// Parse decodes the TOML document in data into descriptors, in file order.
func Parse(data []byte) ([]*table.Descriptor, error) {
	var raw fileConfig
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	return build(raw, meta)
}

// LoadFile reads the schema file at path into descriptors, in file order.
func LoadFile(path string) ([]*table.Descriptor, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", path, err)
	}

	descs, err := build(raw, meta)
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", path, err)
	}

	return descs, nil
}

// LoadInto reads the schema file at path and registers every table in reg.
// Tables registered before a failure stay registered.
func LoadInto(reg *registry.Registry, path string) ([]*table.Descriptor, error) {
	descs, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	for _, d := range descs {
		if err := reg.Register(d); err != nil {
			return nil, fmt.Errorf("load schema %s: %w", path, err)
		}
	}

	return descs, nil
}

func build(raw fileConfig, meta toml.MetaData) ([]*table.Descriptor, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return nil, fmt.Errorf("%w: unknown keys %s", errs.ErrInvalidSchema, strings.Join(keys, ", "))
	}

	seen := make(map[string]struct{}, len(raw.Tables))
	descs := make([]*table.Descriptor, 0, len(raw.Tables))
	for i, tc := range raw.Tables {
		name := strings.TrimSpace(tc.Name)
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: table %q declared twice", errs.ErrInvalidSchema, name)
		}
		seen[name] = struct{}{}

		fields := make([]table.FieldDesc, 0, len(tc.Fields))
		for j, fc := range tc.Fields {
			f, err := fieldDesc(fc)
			if err != nil {
				return nil, fmt.Errorf("table %d (%s) field %d: %w", i, name, j, err)
			}
			fields = append(fields, f)
		}

		desc, err := table.NewDescriptor(name, fields...)
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
	}

	return descs, nil
}

func fieldDesc(fc fieldConfig) (table.FieldDesc, error) {
	if fc.ID == nil {
		return table.FieldDesc{}, fmt.Errorf("%w: missing id", errs.ErrInvalidSchema)
	}
	if *fc.ID < 0 {
		return table.FieldDesc{}, fmt.Errorf("%w: negative id %d", errs.ErrInvalidSchema, *fc.ID)
	}
	if strings.TrimSpace(fc.Type) == "" {
		return table.FieldDesc{}, fmt.Errorf("%w: missing type", errs.ErrInvalidSchema)
	}
	tag, err := table.ParseTypeTag(fc.Type)
	if err != nil {
		return table.FieldDesc{}, err
	}

	state := table.Active
	if fc.Retired {
		state = table.Retired
	}

	return table.FieldDesc{
		ID:    table.FieldID(*fc.ID),
		Name:  strings.TrimSpace(fc.Name),
		Type:  tag,
		State: state,
	}, nil
}
