package grapevine

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

var (
	ErrNotBoolean       = errors.New("chaff flag is not boolean")
	ErrRelationMismatch = errors.New("relation does not match previous hop")
)

// NextState is the native witness generator for Circuit. It computes the
// same transition as Step over concrete values and fails wherever Define
// would be unsatisfiable.
func NextState(
	z [StateLen]fr.Element,
	phrase [PhraseLen]fr.Element,
	usernames [SlotCount]fr.Element,
	authSecrets [SlotCount]fr.Element,
) ([StateLen]fr.Element, error) {
	next := z

	chaff := z[StateChaff]
	switch {
	case chaff.IsOne():
		next[StateChaff].SetZero()
		return next, nil
	case !chaff.IsZero():
		return next, fmt.Errorf("%w: %s", ErrNotBoolean, chaff.String())
	}

	first := z[StateDegree].IsZero()
	if !first {
		prev, err := hashElements(usernames[0], authSecrets[0])
		if err != nil {
			return next, err
		}
		if !prev.Equal(&z[StateRelation]) {
			return next, ErrRelationMismatch
		}
	}

	var one fr.Element
	one.SetOne()
	next[StateDegree].Add(&z[StateDegree], &one)

	if first {
		scope, err := hashElements(phrase[:]...)
		if err != nil {
			return next, err
		}
		next[StateScope] = scope
	}

	relation, err := hashElements(usernames[1], authSecrets[1])
	if err != nil {
		return next, err
	}
	next[StateRelation] = relation
	next[StateChaff].SetOne()

	return next, nil
}

// Relation returns MiMC(username, authSecret), the value a hop leaves in the
// relation slot of the state.
func Relation(username, authSecret fr.Element) (fr.Element, error) {
	return hashElements(username, authSecret)
}

// Scope returns MiMC over the phrase chunks.
func Scope(phrase [PhraseLen]fr.Element) (fr.Element, error) {
	return hashElements(phrase[:]...)
}

func hashElements(es ...fr.Element) (fr.Element, error) {
	var out fr.Element
	h := mimc.NewMiMC()
	for i := range es {
		if _, err := h.Write(es[i].Marshal()); err != nil {
			return out, fmt.Errorf("mimc write: %w", err)
		}
	}
	out.SetBytes(h.Sum(nil))
	return out, nil
}

// Assign builds a full witness assignment for Circuit.
func Assign(
	z, next [StateLen]fr.Element,
	phrase [PhraseLen]fr.Element,
	usernames [SlotCount]fr.Element,
	authSecrets [SlotCount]fr.Element,
) *Circuit {
	c := PublicAssignment(z, next)
	for i := range phrase {
		c.Phrase[i] = toBig(phrase[i])
	}
	for i := 0; i < SlotCount; i++ {
		c.Usernames[i] = toBig(usernames[i])
		c.AuthSecrets[i] = toBig(authSecrets[i])
	}
	return c
}

// PublicAssignment sets only the public state of Circuit, for verification.
func PublicAssignment(z, next [StateLen]fr.Element) *Circuit {
	c := &Circuit{}
	for i := 0; i < StateLen; i++ {
		c.IvcInput[i] = toBig(z[i])
		c.IvcOutput[i] = toBig(next[i])
	}
	return c
}

func toBig(e fr.Element) *big.Int {
	return e.BigInt(new(big.Int))
}
