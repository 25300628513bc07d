// Package ivc drives the step circuit through a sequence of folds. It stands
// in for a folding engine: each fold is evaluated natively and, optionally,
// proven on its own with Groth16 so the whole chain can be checked later.
package ivc

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"

	"grapevine/circuits/grapevine"
	"grapevine/pkg/executor"
	"grapevine/pkg/inputs"
	"grapevine/pkg/step"
)

// Options configures a Chain.
type Options struct {
	// Rand supplies chaff values. Defaults to crypto/rand.
	Rand io.Reader
	// Prove produces a Groth16 proof for every fold.
	Prove bool
	// Keys are the proving keys; grapevine.Setup() is used when nil.
	Keys *grapevine.ProvingKeys
	// Logger defaults to gnark's logger.
	Logger *zerolog.Logger
	// Metrics, when set, records fold counts and timings.
	Metrics *Metrics
}

// Fold records one step of the chain.
type Fold struct {
	Index  int
	Input  []fr.Element
	Output []fr.Element
	Proof  []byte
}

// Transcript is the verifiable record of a proven chain.
type Transcript struct {
	CircuitID string
	Folds     []Fold
}

// Chain advances an accumulator state one private input at a time.
// A Chain is not safe for concurrent use.
type Chain struct {
	native     *step.Native
	rng        io.Reader
	keys       *grapevine.ProvingKeys
	prove      bool
	z          []fr.Element
	transcript Transcript
	log        zerolog.Logger
	metrics    *Metrics
}

// InitialState returns the all-zero state z_0.
func InitialState() []fr.Element {
	return make([]fr.Element, grapevine.StateLen)
}

// NewChain starts a chain at InitialState.
func NewChain(exec executor.Executor, opts Options) (*Chain, error) {
	c := &Chain{
		rng:     opts.Rand,
		prove:   opts.Prove,
		keys:    opts.Keys,
		z:       InitialState(),
		metrics: opts.Metrics,
	}
	if c.rng == nil {
		c.rng = rand.Reader
	}
	if opts.Logger != nil {
		c.log = *opts.Logger
	} else {
		c.log = logger.Logger().With().Str("component", "ivc").Logger()
	}
	c.native = step.NewNative(exec, step.WithRand(c.rng), step.WithLogger(c.log))

	if c.prove {
		if c.keys == nil {
			keys, err := grapevine.Setup()
			if err != nil {
				return nil, err
			}
			c.keys = keys
		}
		id, err := grapevine.CircuitID(c.keys.VK)
		if err != nil {
			return nil, err
		}
		c.transcript.CircuitID = id
	}
	return c, nil
}

// Step applies one fold with the given private input and returns the new state.
// On error the chain is left unchanged.
func (c *Chain) Step(ctx context.Context, in inputs.PrivateInput) (_ []fr.Element, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() { c.metrics.fold(err) }()

	i := len(c.transcript.Folds)
	start := time.Now()

	if in == nil {
		return nil, &step.PhaseError{Phase: step.PhaseMarshal, Step: i, Err: step.ErrPrivateInputNotSet}
	}
	m, err := inputs.Marshal(in, c.rng)
	if err != nil {
		return nil, &step.PhaseError{Phase: step.PhaseMarshal, Step: i, Err: err}
	}

	next, err := c.native.StepMarshaled(c.z, i, m)
	if err != nil {
		return nil, err
	}
	c.metrics.observe("evaluate", start)

	fold := Fold{Index: i, Input: slices.Clone(c.z), Output: slices.Clone(next)}
	if c.prove {
		proveStart := time.Now()
		assignment := grapevine.Assign(toState(c.z), toState(next), m.Phrase, m.Usernames, m.AuthSecrets)
		res, err := grapevine.Prove(c.keys, assignment)
		if err != nil {
			return nil, fmt.Errorf("prove fold %d: %w", i, err)
		}
		fold.Proof = res.Proof
		c.metrics.observe("prove", proveStart)
	}

	c.transcript.Folds = append(c.transcript.Folds, fold)
	c.z = next

	c.log.Info().
		Int("fold", i).
		Uint64("degree", next[grapevine.StateDegree].Uint64()).
		Bool("proved", fold.Proof != nil).
		Dur("took", time.Since(start)).
		Msg("fold applied")
	return c.State(), nil
}

// Run applies every input in order and returns the final state.
func (c *Chain) Run(ctx context.Context, steps []inputs.PrivateInput) ([]fr.Element, error) {
	for _, in := range steps {
		if _, err := c.Step(ctx, in); err != nil {
			return nil, err
		}
	}
	return c.State(), nil
}

// State returns a copy of the current state.
func (c *Chain) State() []fr.Element {
	return append([]fr.Element(nil), c.z...)
}

// Transcript returns a deep copy of the folds applied so far.
func (c *Chain) Transcript() *Transcript {
	t := Transcript{CircuitID: c.transcript.CircuitID, Folds: make([]Fold, len(c.transcript.Folds))}
	for i, f := range c.transcript.Folds {
		t.Folds[i] = f.clone()
	}
	return &t
}

func (f Fold) clone() Fold {
	f.Input = slices.Clone(f.Input)
	f.Output = slices.Clone(f.Output)
	f.Proof = slices.Clone(f.Proof)
	return f
}

func toState(z []fr.Element) [grapevine.StateLen]fr.Element {
	var out [grapevine.StateLen]fr.Element
	copy(out[:], z)
	return out
}
