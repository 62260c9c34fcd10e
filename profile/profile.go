package profile

// Config selects what is profiled and where the profile is written.
type Config struct {
	Mode  string
	Path  string
	Quiet bool
}

// Option changes one setting of a [Config].
type Option func(Config) Config

// WithMode sets the profiling mode, one of [Modes].
func WithMode(mode string) Option {
	return func(c Config) Config {
		c.Mode = mode

		return c
	}
}

// WithPath sets the output directory.
func WithPath(path string) Option {
	return func(c Config) Config {
		c.Path = path

		return c
	}
}

// WithQuiet suppresses the messages of the profiler.
func WithQuiet(quiet bool) Option {
	return func(c Config) Config {
		c.Quiet = quiet

		return c
	}
}

// Start starts the profiler configured by opts. The result is a no-op
// unless built with [Tag] and given a known mode. Stop is always safely
// callable.
func Start(opts ...Option) interface{ Stop() } {
	var c Config

	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	if c.Mode == "" {
		return ignore{}
	}

	return start(c)
}

type ignore struct{}

func (ignore) Stop() {}
