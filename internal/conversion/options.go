package conversion

import "github.com/dshills/twintree/internal/logging"

// Options configure a dispatcher.
type Options struct {
	// Strict returns contract violations and converter failures from the
	// conversion call instead of only logging them.
	Strict bool

	// NormalizeText applies Unicode NFC normalization to upcast text.
	NormalizeText bool

	// Logger receives per-pass diagnostics. Nil disables logging.
	Logger *logging.Logger
}

func (o Options) logger(component string) *logging.Logger {
	if o.Logger == nil {
		return logging.NullLogger()
	}
	return o.Logger.WithComponent(component)
}
