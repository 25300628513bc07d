package step

import (
	"crypto/rand"
	"io"

	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
)

type options struct {
	rng io.Reader
	log zerolog.Logger
}

// Option configures an evaluator.
type Option func(*options)

// WithRand sets the generator used for chaff values. It must be safe for
// concurrent use when evaluators share it.
func WithRand(rng io.Reader) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithLogger replaces the component logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func newOptions(opts []Option) options {
	o := options{
		rng: rand.Reader,
		log: logger.Logger().With().Str("component", "step").Logger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.Reader
	}
	return o
}
