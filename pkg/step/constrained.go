package step

import (
	"fmt"
	"math/big"
	"time"

	"github.com/consensys/gnark/frontend"

	"grapevine/pkg/executor"
	"grapevine/pkg/field"
	"grapevine/pkg/inputs"
)

// Constrained evaluates a step over circuit variables, asserting the step
// circuit into api. It reads the concrete values behind z through
// api.Compiler().ConstantValue, so api must be an engine that exposes them,
// such as the gnark test engine run with test.SetAllVariablesAsConstants.
// The R1CS and SCS builders report no constant values for allocated inputs
// and gnark does not call Define while solving, so under those engines Step
// fails with ErrAssignmentMissing.
type Constrained struct {
	api  frontend.API
	exec executor.Executor
	opts options
}

var _ Evaluator[frontend.Variable] = (*Constrained)(nil)

func NewConstrained(api frontend.API, exec executor.Executor, opts ...Option) *Constrained {
	return &Constrained{api: api, exec: exec, opts: newOptions(opts)}
}

func (c *Constrained) Step(z []frontend.Variable, i int, in inputs.PrivateInput) ([]frontend.Variable, error) {
	if in == nil {
		return nil, fail(PhaseMarshal, i, ErrPrivateInputNotSet)
	}
	if len(z) != executor.StateLen {
		return nil, fail(PhaseConstraints, i, fmt.Errorf("%w: %d", ErrStateLength, len(z)))
	}
	start := time.Now()

	ivcInput := make([]*big.Int, len(z))
	for j, v := range z {
		val, ok := c.api.Compiler().ConstantValue(v)
		if !ok {
			return nil, fail(PhaseConstraints, i, fmt.Errorf("%w: ivc_input[%d]", ErrAssignmentMissing, j))
		}
		ivcInput[j] = val
	}

	if in.Slots().Uninitialized() {
		return nil, fail(PhaseMarshal, i, fmt.Errorf("%w: %w", ErrAssignmentMissing, inputs.ErrUninitializedInput))
	}
	m, err := inputs.Marshal(in, c.opts.rng)
	if err != nil {
		return nil, fail(PhaseMarshal, i, err)
	}

	named := executor.Inputs(m.Named())
	named[executor.SignalIvcInput] = ivcInput

	r1cs, w, err := c.exec.ExtractR1CSAndWitness(named)
	if err != nil {
		return nil, fail(PhaseConstraints, i, fmt.Errorf("%w: %w", ErrWitnessCalculation, err))
	}
	if err := r1cs.IsSatisfied(); err != nil {
		return nil, fail(PhaseConstraints, i, fmt.Errorf("%w: %w", ErrUnsatisfiable, err))
	}
	if len(w) < 1+executor.StateLen {
		return nil, fail(PhaseConstraints, i, fmt.Errorf("%w: no witness for the next state", ErrUnsatisfiable))
	}

	values := make([]frontend.Variable, executor.StateLen)
	for j := range values {
		values[j] = field.ToBigInt(w[1+j])
	}
	next, err := executor.Allocate(c.api, values...)
	if err != nil {
		return nil, fail(PhaseConstraints, i, err)
	}
	if err := r1cs.GenerateConstraints(c.api, z, next); err != nil {
		return nil, fail(PhaseConstraints, i, fmt.Errorf("%w: %w", ErrUnsatisfiable, err))
	}

	c.opts.log.Debug().
		Int("step", i).
		Str("phase", string(PhaseConstraints)).
		Int("constraints", r1cs.NbConstraints()).
		Dur("took", time.Since(start)).
		Msg("step constrained")
	return next, nil
}
