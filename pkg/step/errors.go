package step

import (
	"errors"
	"fmt"
)

var (
	ErrPrivateInputNotSet = errors.New("private input not set")
	ErrAssignmentMissing  = errors.New("assignment missing")
	ErrWitnessCalculation = errors.New("witness calculation failed")
	ErrUnsatisfiable      = errors.New("constraints unsatisfiable")
	ErrStateLength        = errors.New("wrong state length")
)

// Phase names the part of a step that failed.
type Phase string

const (
	PhaseMarshal     Phase = "marshal"
	PhaseNative      Phase = "native"
	PhaseConstraints Phase = "constraints"
)

// PhaseError is returned by every evaluator failure.
type PhaseError struct {
	Phase Phase
	Step  int
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("step %d: %s: %v", e.Step, e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

func fail(phase Phase, step int, err error) error {
	return &PhaseError{Phase: phase, Step: step, Err: err}
}
