package step

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/frontend"

	"grapevine/pkg/executor"
	"grapevine/pkg/inputs"
)

// FCircuit is the step circuit as seen by a folding engine. The private input
// for the next step is bound with SetPrivateInput before each fold.
// An FCircuit is not safe for concurrent use.
type FCircuit struct {
	native *Native
	exec   executor.Executor
	opts   []Option
	input  inputs.PrivateInput
}

func New(exec executor.Executor, opts ...Option) *FCircuit {
	return &FCircuit{
		native: NewNative(exec, opts...),
		exec:   exec,
		opts:   opts,
	}
}

// SetPrivateInput replaces the bound private input.
func (f *FCircuit) SetPrivateInput(in inputs.PrivateInput) {
	f.input = in
}

// StateLen returns the length of z_i.
func (f *FCircuit) StateLen() int {
	return executor.StateLen
}

// StepNative computes z_{i+1} for the bound private input.
func (f *FCircuit) StepNative(i int, z []fr.Element) ([]fr.Element, error) {
	return f.native.Step(z, i, f.input)
}

// GenerateStepConstraints emits the constraints of step i into api and
// returns z_{i+1} as new variables.
func (f *FCircuit) GenerateStepConstraints(api frontend.API, i int, z []frontend.Variable) ([]frontend.Variable, error) {
	return NewConstrained(api, f.exec, f.opts...).Step(z, i, f.input)
}
