package table

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sheldonrobinson/libnop/errs"
	"github.com/sheldonrobinson/libnop/internal/options"
	"github.com/sheldonrobinson/libnop/wire"
)

type config struct {
	logger zerolog.Logger
	limits wire.Limits
}

func defaultConfig() config {
	return config{
		logger: zerolog.Nop(),
		limits: wire.DefaultLimits(),
	}
}

// Option configures an encode or decode call.
type Option = options.Option[*config]

func buildConfig(opts []Option) (config, error) {
	return options.Build(defaultConfig(), opts...)
}

// WithLogger sets the logger that receives debug events for skipped fields.
// The default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return options.NoError(func(c *config) {
		c.logger = logger
	})
}

// WithMaxValueSize bounds the payload size of one length-prefixed value.
// A larger value fails with errs.ErrValueTooLarge on both encode and decode.
func WithMaxValueSize(n uint64) Option {
	return options.New(func(c *config) error {
		if n == 0 {
			return fmt.Errorf("%w: max value size must be positive", errs.ErrInvalidValue)
		}
		c.limits.MaxValueSize = n

		return nil
	})
}

// WithMaxEntries bounds the entry count a decoder accepts for one record.
func WithMaxEntries(n uint64) Option {
	return options.New(func(c *config) error {
		if n == 0 {
			return fmt.Errorf("%w: max entries must be positive", errs.ErrInvalidValue)
		}
		c.limits.MaxEntries = n

		return nil
	})
}
