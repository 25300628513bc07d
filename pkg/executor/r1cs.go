package executor

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/constraint/solver"
	"github.com/consensys/gnark/frontend"

	"grapevine/circuits/grapevine"
)

func init() {
	solver.RegisterHint(identityHint)
}

// R1CS is the executor's constraint system paired with a solved witness.
type R1CS struct {
	ccs        constraint.ConstraintSystem
	witness    witness.Witness
	assignment *grapevine.Circuit
}

// IsSatisfied checks the witness against every constraint.
func (r *R1CS) IsSatisfied() error {
	return r.ccs.IsSolved(r.witness)
}

// NbConstraints returns the number of constraints GenerateConstraints emits.
func (r *R1CS) NbConstraints() int {
	return r.ccs.GetNbConstraints()
}

// GenerateConstraints asserts the step circuit into api, wiring ivcInput and
// ivcOutput as its public state. The private inputs are allocated as fresh
// hint-backed wires holding the solved witness values.
func (r *R1CS) GenerateConstraints(api frontend.API, ivcInput, ivcOutput []frontend.Variable) error {
	if len(ivcInput) != StateLen || len(ivcOutput) != StateLen {
		return fmt.Errorf("%w: state has %d inputs and %d outputs, want %d", ErrInputLength, len(ivcInput), len(ivcOutput), StateLen)
	}

	var c grapevine.Circuit
	copy(c.IvcInput[:], ivcInput)
	copy(c.IvcOutput[:], ivcOutput)

	var private []frontend.Variable
	private = append(private, r.assignment.Phrase[:]...)
	private = append(private, r.assignment.Usernames[:]...)
	private = append(private, r.assignment.AuthSecrets[:]...)

	wires, err := Allocate(api, private...)
	if err != nil {
		return fmt.Errorf("allocate private inputs: %w", err)
	}
	n := copy(c.Phrase[:], wires)
	n += copy(c.Usernames[:], wires[n:])
	copy(c.AuthSecrets[:], wires[n:])

	return c.Define(api)
}

// Allocate returns fresh variables carrying the given values. The variables
// are unconstrained until the caller constrains them.
func Allocate(api frontend.API, values ...frontend.Variable) ([]frontend.Variable, error) {
	return api.Compiler().NewHint(identityHint, len(values), values...)
}

func identityHint(_ *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	if len(inputs) != len(outputs) {
		return fmt.Errorf("identity hint: %d inputs, %d outputs", len(inputs), len(outputs))
	}
	for i := range inputs {
		outputs[i].Set(inputs[i])
	}
	return nil
}
