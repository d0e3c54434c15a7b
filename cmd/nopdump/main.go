// Command nopdump prints encoded table records.
//
// Without a schema every entry is shown as it appears on the wire: field id,
// kind, payload size and a short rendering of the payload. With -schema and
// -table the records are decoded against that table, so unknown and retired
// fields are dropped exactly as a reader of that version would drop them.
//
// Usage:
//
//	nopdump [flags] [file]
//
// Records are read back to back from file, or from stdin when file is
// omitted or "-". With -db they are read from a store bucket instead.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/sheldonrobinson/libnop/internal/logging"
	"github.com/sheldonrobinson/libnop/registry"
	"github.com/sheldonrobinson/libnop/schemafile"
	"github.com/sheldonrobinson/libnop/store"
	"github.com/sheldonrobinson/libnop/table"
	"github.com/sheldonrobinson/libnop/wire"
)

type options struct {
	schema       string
	table        string
	db           string
	debug        bool
	maxValueSize uint64
	input        string
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "nopdump:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	logger := logging.New("nopdump", stderr, opts.debug)

	d := dumper{out: stdout, logger: logger, limits: wire.Limits{MaxValueSize: opts.maxValueSize}}
	if opts.schema != "" {
		desc, err := loadTable(opts.schema, opts.table)
		if err != nil {
			return err
		}
		d.desc = desc
		logger.Debug().Str("schema", opts.schema).Str("table", desc.Name()).Int("fields", desc.Len()).Msg("schema loaded")
	}

	if opts.db != "" {
		return d.dumpStore(opts.db, opts.table)
	}

	in := stdin
	if opts.input != "" && opts.input != "-" {
		f, err := os.Open(opts.input)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	return d.dumpStream(bufio.NewReader(in))
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("nopdump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.schema, "schema", "", "TOML schema file used to decode records")
	fs.StringVar(&opts.table, "table", "", "table to decode records as (required with -db or a multi-table -schema)")
	fs.StringVar(&opts.db, "db", "", "read records from this store file instead of a stream")
	fs.BoolVar(&opts.debug, "debug", false, "log skipped fields and other debug events")
	fs.Uint64Var(&opts.maxValueSize, "max-value-size", wire.DefaultMaxValueSize, "largest accepted length-prefixed value in bytes")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 1 {
		return opts, fmt.Errorf("at most one input file, got %d", fs.NArg())
	}
	opts.input = fs.Arg(0)
	if opts.db != "" && opts.table == "" {
		return opts, errors.New("-db requires -table")
	}
	if opts.maxValueSize == 0 {
		return opts, errors.New("-max-value-size must be positive")
	}

	return opts, nil
}

func loadTable(path, name string) (*table.Descriptor, error) {
	reg := registry.New()
	descs, err := schemafile.LoadInto(reg, path)
	if err != nil {
		return nil, err
	}
	if name == "" {
		if len(descs) != 1 {
			return nil, fmt.Errorf("%s declares %d tables, pick one with -table", path, len(descs))
		}

		return descs[0], nil
	}

	return reg.Lookup(name)
}

type dumper struct {
	out    io.Writer
	logger zerolog.Logger
	limits wire.Limits
	desc   *table.Descriptor
}

func (d dumper) tableOptions() []table.Option {
	return []table.Option{
		table.WithLogger(d.logger),
		table.WithMaxValueSize(d.limits.MaxValueSize),
	}
}

func (d dumper) dumpStream(src wire.Source) error {
	for n := 0; ; n++ {
		if d.desc != nil {
			rec, err := table.DecodeRecord(src, d.desc, d.tableOptions()...)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("record %d: %w", n, err)
			}
			fmt.Fprintf(d.out, "record %d: %s\n", n, rec)

			continue
		}

		fields, err := wire.Scan(src, d.limits)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", n, err)
		}
		fmt.Fprintf(d.out, "record %d: %d fields\n", n, len(fields))
		d.printFields(fields)
	}
}

func (d dumper) dumpStore(path, tableName string) error {
	st, err := store.Open(path, store.WithReadOnly(), store.WithLogger(d.logger))
	if err != nil {
		return err
	}
	defer st.Close()

	return st.ForEachRaw(tableName, func(key, data []byte) error {
		if d.desc != nil {
			rec, err := table.UnmarshalRecord(data, d.desc, d.tableOptions()...)
			if err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
			fmt.Fprintf(d.out, "%q: %s\n", key, rec)

			return nil
		}

		var fields []wire.RawField
		for f, err := range wire.Fields(data, d.limits) {
			if err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
			fields = append(fields, f)
		}
		fmt.Fprintf(d.out, "%q: %d fields\n", key, len(fields))
		d.printFields(fields)

		return nil
	})
}

func (d dumper) printFields(fields []wire.RawField) {
	for _, f := range fields {
		fmt.Fprintf(d.out, "  %d: %s (%d bytes) %s\n", f.ID, f.Frame.Kind, len(f.Frame.Payload), render(f.Frame))
	}
}

const previewBytes = 32

// render shows a payload without a schema: scalars as numbers, strings
// quoted and everything else as a hex preview.
func render(f wire.Frame) string {
	switch f.Kind {
	case wire.KindBool:
		return strconv.FormatBool(f.Payload[0] != 0)
	case wire.KindInt8, wire.KindInt16, wire.KindInt32, wire.KindInt64:
		shift := 64 - 8*len(f.Payload)
		return strconv.FormatInt(int64(wire.FixedValue(f.Payload)<<shift)>>shift, 10) //nolint:gosec
	case wire.KindUint8, wire.KindUint16, wire.KindUint32, wire.KindUint64:
		return strconv.FormatUint(wire.FixedValue(f.Payload), 10)
	case wire.KindString:
		return strconv.Quote(string(f.Payload))
	}

	p := f.Payload
	suffix := ""
	if len(p) > previewBytes {
		p = p[:previewBytes]
		suffix = "..."
	}

	return fmt.Sprintf("% x%s", p, suffix)
}
