package ivc

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"grapevine/circuits/grapevine"
)

var (
	ErrBrokenChain     = errors.New("fold does not continue the chain")
	ErrMissingProof    = errors.New("fold has no proof")
	ErrCircuitMismatch = errors.New("transcript was proven for another circuit")
	ErrNilTranscript   = errors.New("nil transcript")
)

// VerifyChain checks that the transcript starts at z0, that each fold's input
// is the previous fold's output, and that every fold proof verifies. Proofs
// are checked in parallel.
func VerifyChain(ctx context.Context, keys *grapevine.ProvingKeys, z0 []fr.Element, t *Transcript) error {
	if t == nil {
		return ErrNilTranscript
	}
	if keys == nil {
		var err error
		if keys, err = grapevine.Setup(); err != nil {
			return err
		}
	}

	id, err := grapevine.CircuitID(keys.VK)
	if err != nil {
		return err
	}
	if t.CircuitID != id {
		return fmt.Errorf("%w: have %s, want %s", ErrCircuitMismatch, t.CircuitID, id)
	}

	prev := z0
	for i, f := range t.Folds {
		if f.Index != i {
			return fmt.Errorf("%w: fold %d has index %d", ErrBrokenChain, i, f.Index)
		}
		if !equalState(prev, f.Input) {
			return fmt.Errorf("%w: fold %d", ErrBrokenChain, i)
		}
		if len(f.Proof) == 0 {
			return fmt.Errorf("%w: fold %d", ErrMissingProof, i)
		}
		prev = f.Output
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, f := range t.Folds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := grapevine.Verify(keys, f.Proof, toState(f.Input), toState(f.Output)); err != nil {
				return fmt.Errorf("fold %d: %w", f.Index, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func equalState(a, b []fr.Element) bool {
	if len(a) != grapevine.StateLen || len(b) != grapevine.StateLen {
		return false
	}
	for i := range a {
		if !a[i].Equal(&b[i]) {
			return false
		}
	}
	return true
}
