// Package step advances the accumulator state by one fold. The transition is
// evaluated twice: natively over field elements to produce the next witness,
// and symbolically to emit the constraints proving it. Both must agree.
package step

import (
	"fmt"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"grapevine/pkg/executor"
	"grapevine/pkg/field"
	"grapevine/pkg/inputs"
)

// Evaluator computes z_{i+1} from z_i and the private input of step i.
type Evaluator[V any] interface {
	Step(z []V, i int, in inputs.PrivateInput) ([]V, error)
}

// Native evaluates a step over concrete field elements.
type Native struct {
	exec executor.Executor
	opts options
}

var _ Evaluator[fr.Element] = (*Native)(nil)

func NewNative(exec executor.Executor, opts ...Option) *Native {
	return &Native{exec: exec, opts: newOptions(opts)}
}

func (n *Native) Step(z []fr.Element, i int, in inputs.PrivateInput) ([]fr.Element, error) {
	if in == nil {
		return nil, fail(PhaseMarshal, i, ErrPrivateInputNotSet)
	}
	m, err := inputs.Marshal(in, n.opts.rng)
	if err != nil {
		return nil, fail(PhaseMarshal, i, err)
	}
	return n.StepMarshaled(z, i, m)
}

// StepMarshaled is Step for inputs that were already marshaled.
func (n *Native) StepMarshaled(z []fr.Element, i int, m *inputs.Marshaled) ([]fr.Element, error) {
	if len(z) != executor.StateLen {
		return nil, fail(PhaseNative, i, fmt.Errorf("%w: %d", ErrStateLength, len(z)))
	}
	start := time.Now()

	named := executor.Inputs(m.Named())
	named[executor.SignalIvcInput] = field.ToBigInts(z)

	w, err := n.exec.CalculateWitness(named, false)
	if err != nil {
		return nil, fail(PhaseNative, i, fmt.Errorf("%w: %w", ErrWitnessCalculation, err))
	}
	if len(w) < 1+executor.StateLen {
		return nil, fail(PhaseNative, i, fmt.Errorf("%w: witness has %d values", ErrWitnessCalculation, len(w)))
	}

	next := make([]fr.Element, executor.StateLen)
	copy(next, w[1:])

	n.opts.log.Debug().
		Int("step", i).
		Str("phase", string(PhaseNative)).
		Dur("took", time.Since(start)).
		Msg("step evaluated")
	return next, nil
}
