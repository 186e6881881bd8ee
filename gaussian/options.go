package gaussian

import "github.com/gabrielPeart/AIToolbox/randn"

// options collects construction settings shared by Univariate and
// Multivariate.
type options struct {
	seed uint64
	src  randn.Source
}

// Option configures a distribution at construction time.
type Option func(*options)

// WithRandomSeed seeds the distribution's random generator for
// reproducibility. A zero seed selects a time-based one.
func WithRandomSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithSource supplies the uniform source backing the distribution's
// random generator, taking precedence over WithRandomSeed.
func WithSource(src randn.Source) Option {
	return func(o *options) {
		o.src = src
	}
}

// newGenerator resolves the applied options into a normal generator
// owned by a single distribution instance.
func newGenerator(opts []Option) *randn.Generator {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.src != nil {
		return randn.NewFrom(o.src)
	}
	return randn.New(o.seed)
}
