// Package executor runs the compiled step circuit: it produces satisfying
// assignments for named inputs and re-emits the circuit's constraints into a
// caller's constraint system.
package executor

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	cs "github.com/consensys/gnark/constraint/bn254"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"

	"grapevine/circuits/grapevine"
	"grapevine/pkg/field"
)

// StateLen is the width of the public state every step circuit exposes as
// ivc_input and ivc_output.
const StateLen = 4

// SignalIvcInput names the public state input.
const SignalIvcInput = "ivc_input"

var (
	ErrMissingInput = errors.New("missing input signal")
	ErrInputLength  = errors.New("input signal has wrong length")
)

// Inputs are circuit input vectors keyed by signal name.
type Inputs map[string][]*big.Int

// Executor computes witnesses for a compiled circuit.
//
// Witness vectors follow the R1CS wire order: index 0 is the constant one
// wire, followed by the public outputs, the public inputs and the secret
// inputs. A sanity-checked witness also carries every internal wire.
type Executor interface {
	CalculateWitness(in Inputs, sanityCheck bool) ([]fr.Element, error)
	ExtractR1CSAndWitness(in Inputs) (*R1CS, []fr.Element, error)
}

// Grapevine executes the grapevine step circuit.
type Grapevine struct {
	ccs constraint.ConstraintSystem
	log zerolog.Logger
}

// New wraps an already compiled step circuit.
func New(ccs constraint.ConstraintSystem) *Grapevine {
	return &Grapevine{
		ccs: ccs,
		log: logger.Logger().With().Str("component", "executor").Logger(),
	}
}

// Default compiles the step circuit in process.
func Default() (*Grapevine, error) {
	ccs, err := grapevine.Compile()
	if err != nil {
		return nil, err
	}
	return New(ccs), nil
}

// Load reads a circuit artifact written by grapevine.WriteArtifact.
func Load(path string) (*Grapevine, error) {
	ccs, err := grapevine.ReadArtifact(path)
	if err != nil {
		return nil, err
	}
	if want := 2*StateLen + 1; ccs.GetNbPublicVariables() != want {
		return nil, fmt.Errorf("artifact %s has %d public wires, want %d", path, ccs.GetNbPublicVariables(), want)
	}
	return New(ccs), nil
}

// ConstraintSystem returns the compiled circuit.
func (g *Grapevine) ConstraintSystem() constraint.ConstraintSystem {
	return g.ccs
}

func (g *Grapevine) CalculateWitness(in Inputs, sanityCheck bool) ([]fr.Element, error) {
	if !sanityCheck {
		a, err := assign(in)
		if err != nil {
			return nil, err
		}
		w, err := frontend.NewWitness(a, ecc.BN254.ScalarField())
		if err != nil {
			return nil, fmt.Errorf("witness creation failed: %w", err)
		}
		vec, ok := w.Vector().(fr.Vector)
		if !ok {
			return nil, fmt.Errorf("unexpected witness vector %T", w.Vector())
		}
		var one fr.Element
		one.SetOne()
		return append([]fr.Element{one}, vec...), nil
	}

	_, _, wires, err := g.solve(in)
	return wires, err
}

func (g *Grapevine) ExtractR1CSAndWitness(in Inputs) (*R1CS, []fr.Element, error) {
	a, w, wires, err := g.solve(in)
	if err != nil {
		return nil, nil, err
	}
	return &R1CS{ccs: g.ccs, witness: w, assignment: a}, wires, nil
}

func (g *Grapevine) solve(in Inputs) (*grapevine.Circuit, witness.Witness, []fr.Element, error) {
	a, err := assign(in)
	if err != nil {
		return nil, nil, nil, err
	}
	w, err := frontend.NewWitness(a, ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("witness creation failed: %w", err)
	}

	start := time.Now()
	sol, err := g.ccs.Solve(w)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("solve: %w", err)
	}
	r1csSol, ok := sol.(*cs.R1CSSolution)
	if !ok {
		return nil, nil, nil, fmt.Errorf("unexpected solution %T", sol)
	}
	g.log.Debug().
		Int("wires", len(r1csSol.W)).
		Dur("took", time.Since(start)).
		Msg("solved step circuit")

	return a, w, r1csSol.W, nil
}

// assign runs the native witness generator over the named inputs.
func assign(in Inputs) (*grapevine.Circuit, error) {
	var (
		z           [grapevine.StateLen]fr.Element
		phrase      [grapevine.PhraseLen]fr.Element
		usernames   [grapevine.SlotCount]fr.Element
		authSecrets [grapevine.SlotCount]fr.Element
	)
	for _, s := range []struct {
		name string
		dst  []fr.Element
	}{
		{grapevine.SignalIvcInput, z[:]},
		{grapevine.SignalPhrase, phrase[:]},
		{grapevine.SignalUsernames, usernames[:]},
		{grapevine.SignalAuthSecrets, authSecrets[:]},
	} {
		if err := read(in, s.name, s.dst); err != nil {
			return nil, err
		}
	}

	next, err := grapevine.NextState(z, phrase, usernames, authSecrets)
	if err != nil {
		return nil, fmt.Errorf("witness generator: %w", err)
	}
	return grapevine.Assign(z, next, phrase, usernames, authSecrets), nil
}

func read(in Inputs, name string, dst []fr.Element) error {
	vals, ok := in[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingInput, name)
	}
	if len(vals) != len(dst) {
		return fmt.Errorf("%w: %s has %d values, want %d", ErrInputLength, name, len(vals), len(dst))
	}
	for i, v := range vals {
		e, err := field.FromBigInt(v)
		if err != nil {
			return fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		dst[i] = e
	}
	return nil
}
