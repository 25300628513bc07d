package step

import (
	"errors"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"grapevine/circuits/grapevine"
	"grapevine/pkg/executor"
	"grapevine/pkg/field"
	"grapevine/pkg/inputs"
)

var (
	aliceSecret   = big.NewInt(1001)
	bobSecret     = big.NewInt(2002)
	charlieSecret = big.NewInt(3003)
)

// scenario is first hop, chaff, alice -> bob, chaff, bob -> charlie, chaff.
func scenario() []inputs.PrivateInput {
	return []inputs.PrivateInput{
		inputs.Genesis{Phrase: "This is a secret", Username: "alice", Secret: aliceSecret},
		inputs.Chaff{},
		inputs.Link{UsernameA: "alice", UsernameB: "bob", SecretA: aliceSecret, SecretB: bobSecret},
		inputs.Chaff{},
		inputs.Link{UsernameA: "bob", UsernameB: "charlie", SecretA: bobSecret, SecretB: charlieSecret},
		inputs.Chaff{},
	}
}

func newExecutor(t *testing.T) *executor.Grapevine {
	t.Helper()
	exec, err := executor.Default()
	require.NoError(t, err)
	return exec
}

func zeroState() []fr.Element {
	return make([]fr.Element, grapevine.StateLen)
}

func runChain(t *testing.T, f *FCircuit, steps []inputs.PrivateInput) []fr.Element {
	t.Helper()
	z := zeroState()
	for i, in := range steps {
		f.SetPrivateInput(in)
		next, err := f.StepNative(i, z)
		require.NoError(t, err, "step %d", i)
		z = next
	}
	return z
}

func TestNativeChain(t *testing.T) {
	f := New(newExecutor(t))
	require.Equal(t, 4, f.StateLen())

	z := runChain(t, f, scenario())
	require.Equal(t, uint64(3), z[grapevine.StateDegree].Uint64())
	require.True(t, z[grapevine.StateChaff].IsZero())

	charlie, err := field.EncodeUsername("charlie")
	require.NoError(t, err)
	secret, err := field.FromBigInt(charlieSecret)
	require.NoError(t, err)
	relation, err := grapevine.Relation(charlie, secret)
	require.NoError(t, err)
	require.True(t, relation.Equal(&z[grapevine.StateRelation]))
}

func TestNativeDeterminism(t *testing.T) {
	exec := newExecutor(t)
	seed := [32]byte{42}

	a := runChain(t, New(exec, WithRand(field.NewSeededReader(seed))), scenario())
	b := runChain(t, New(exec, WithRand(field.NewSeededReader(seed))), scenario())
	require.Equal(t, a, b)

	// chaff randomness never reaches the state
	c := runChain(t, New(exec, WithRand(field.NewSeededReader([32]byte{43}))), scenario())
	require.Equal(t, a, c)
}

func TestNativeDoesNotMutateInput(t *testing.T) {
	f := New(newExecutor(t))
	f.SetPrivateInput(scenario()[0])

	z := zeroState()
	next, err := f.StepNative(0, z)
	require.NoError(t, err)
	require.Equal(t, zeroState(), z)
	require.Equal(t, uint64(1), next[grapevine.StateDegree].Uint64())
}

func TestNativeErrors(t *testing.T) {
	exec := newExecutor(t)

	t.Run("not set", func(t *testing.T) {
		_, err := New(exec).StepNative(0, zeroState())
		require.ErrorIs(t, err, ErrPrivateInputNotSet)

		var perr *PhaseError
		require.True(t, errors.As(err, &perr))
		require.Equal(t, PhaseMarshal, perr.Phase)
	})

	t.Run("uninitialized", func(t *testing.T) {
		f := New(exec)
		f.SetPrivateInput(inputs.Slots{})
		_, err := f.StepNative(0, zeroState())
		require.ErrorIs(t, err, inputs.ErrUninitializedInput)
	})

	t.Run("state length", func(t *testing.T) {
		f := New(exec)
		f.SetPrivateInput(inputs.Chaff{})
		_, err := f.StepNative(0, make([]fr.Element, 3))
		require.ErrorIs(t, err, ErrStateLength)
	})

	t.Run("tampered link", func(t *testing.T) {
		steps := scenario()
		steps[2] = inputs.Link{UsernameA: "alice", UsernameB: "bob", SecretA: big.NewInt(7), SecretB: bobSecret}

		f := New(exec)
		z := zeroState()
		for i, in := range steps[:2] {
			f.SetPrivateInput(in)
			next, err := f.StepNative(i, z)
			require.NoError(t, err)
			z = next
		}

		f.SetPrivateInput(steps[2])
		_, err := f.StepNative(2, z)
		require.ErrorIs(t, err, ErrWitnessCalculation)
		require.ErrorIs(t, err, grapevine.ErrRelationMismatch)

		var perr *PhaseError
		require.True(t, errors.As(err, &perr))
		require.Equal(t, PhaseNative, perr.Phase)
		require.Equal(t, 2, perr.Step)
	})
}

// stepCircuit embeds one constrained step between public states.
type stepCircuit struct {
	Z    [grapevine.StateLen]frontend.Variable `gnark:",public"`
	Next [grapevine.StateLen]frontend.Variable `gnark:",public"`

	f     *FCircuit `gnark:"-"`
	index int       `gnark:"-"`
}

func (c *stepCircuit) Define(api frontend.API) error {
	next, err := c.f.GenerateStepConstraints(api, c.index, c.Z[:])
	if err != nil {
		return err
	}
	for i := range next {
		api.AssertIsEqual(next[i], c.Next[i])
	}
	return nil
}

func stateAssignment(z, next []fr.Element) *stepCircuit {
	var c stepCircuit
	for i := 0; i < grapevine.StateLen; i++ {
		c.Z[i] = field.ToBigInt(z[i])
		c.Next[i] = field.ToBigInt(next[i])
	}
	return &c
}

func TestConstrainedMatchesNative(t *testing.T) {
	exec := newExecutor(t)
	f := New(exec, WithRand(field.NewSeededReader([32]byte{5})))

	z := zeroState()
	for i, in := range scenario() {
		f.SetPrivateInput(in)
		next, err := f.StepNative(i, z)
		require.NoError(t, err, "step %d", i)

		circuit := &stepCircuit{f: f, index: i}
		require.NoError(t, test.IsSolved(circuit, stateAssignment(z, next), ecc.BN254.ScalarField(), test.SetAllVariablesAsConstants()), "step %d", i)

		wrong := append([]fr.Element(nil), next...)
		wrong[grapevine.StateChaff].SetUint64(7)
		require.Error(t, test.IsSolved(circuit, stateAssignment(z, wrong), ecc.BN254.ScalarField(), test.SetAllVariablesAsConstants()), "step %d", i)

		z = next
	}
}

func TestConstrainedErrors(t *testing.T) {
	exec := newExecutor(t)

	t.Run("compile pass", func(t *testing.T) {
		f := New(exec)
		f.SetPrivateInput(scenario()[0])
		_, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &stepCircuit{f: f})
		require.ErrorContains(t, err, ErrAssignmentMissing.Error())
	})

	t.Run("uninitialized", func(t *testing.T) {
		f := New(exec)
		f.SetPrivateInput(inputs.Slots{})
		err := test.IsSolved(&stepCircuit{f: f}, stateAssignment(zeroState(), zeroState()), ecc.BN254.ScalarField(), test.SetAllVariablesAsConstants())
		require.ErrorContains(t, err, ErrAssignmentMissing.Error())
		require.ErrorContains(t, err, inputs.ErrUninitializedInput.Error())
	})

	t.Run("not set", func(t *testing.T) {
		err := test.IsSolved(&stepCircuit{f: New(exec)}, stateAssignment(zeroState(), zeroState()), ecc.BN254.ScalarField(), test.SetAllVariablesAsConstants())
		require.ErrorContains(t, err, ErrPrivateInputNotSet.Error())
	})

	t.Run("bad state", func(t *testing.T) {
		// non-boolean chaff flag
		z := zeroState()
		z[grapevine.StateChaff].SetUint64(2)
		f := New(exec)
		f.SetPrivateInput(inputs.Chaff{})
		err := test.IsSolved(&stepCircuit{f: f}, stateAssignment(z, z), ecc.BN254.ScalarField(), test.SetAllVariablesAsConstants())
		require.ErrorContains(t, err, ErrWitnessCalculation.Error())
	})
}
