package grapevine

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

const (
	// StateLen is the width of the accumulator state z_i.
	StateLen = 4
	// PhraseLen is the number of field elements carrying the phrase.
	PhraseLen = 6
	// SlotCount is the number of username / auth secret slots per step.
	SlotCount = 2
)

// Input signal names.
const (
	SignalIvcInput    = "ivc_input"
	SignalPhrase      = "phrase"
	SignalUsernames   = "usernames"
	SignalAuthSecrets = "auth_secrets"
)

// Positions in the accumulator state.
const (
	StateDegree = iota
	StateScope
	StateRelation
	StateChaff
)

// Circuit is one fold of the grapevine chain:
//
//	IvcOutput = F(IvcInput, Phrase, Usernames, AuthSecrets)
//
// The state is [degree, scope, relation, chaff]. A step is a logic step when
// chaff is 0 and a chaff step when it is 1, so the two kinds alternate.
// Logic steps bump the degree, fix the scope to MiMC(phrase) on the first hop,
// require MiMC(usernames[0], auth_secrets[0]) to match the previous relation
// on later hops, and replace the relation with MiMC(usernames[1], auth_secrets[1]).
// Chaff steps only clear the chaff flag; their private inputs are unconstrained.
type Circuit struct {
	// Public. IvcOutput is declared first so it occupies wires 1..StateLen
	// right after the constant one wire.
	IvcOutput [StateLen]frontend.Variable `gnark:",public"`
	IvcInput  [StateLen]frontend.Variable `gnark:",public"`

	// Witness
	Phrase      [PhraseLen]frontend.Variable
	Usernames   [SlotCount]frontend.Variable
	AuthSecrets [SlotCount]frontend.Variable
}

func (c *Circuit) Define(api frontend.API) error {
	next, err := Step(api, c.IvcInput, c.Phrase, c.Usernames, c.AuthSecrets)
	if err != nil {
		return err
	}
	for i := range next {
		api.AssertIsEqual(next[i], c.IvcOutput[i])
	}
	return nil
}

// Step computes the next state inside any constraint system. It is the
// gadget behind Circuit.Define and can be embedded in larger circuits.
func Step(
	api frontend.API,
	z [StateLen]frontend.Variable,
	phrase [PhraseLen]frontend.Variable,
	usernames [SlotCount]frontend.Variable,
	authSecrets [SlotCount]frontend.Variable,
) ([StateLen]frontend.Variable, error) {
	var next [StateLen]frontend.Variable

	api.AssertIsBoolean(z[StateChaff])
	logic := api.Sub(1, z[StateChaff])
	first := api.IsZero(z[StateDegree])

	h, err := mimc.NewMiMC(api)
	if err != nil {
		return next, err
	}
	h.Write(phrase[:]...)
	scope := h.Sum()

	h.Reset()
	h.Write(usernames[0], authSecrets[0])
	prevRelation := h.Sum()

	h.Reset()
	h.Write(usernames[1], authSecrets[1])
	relation := h.Sum()

	// a link step must continue the relation left by the previous hop
	linking := api.Mul(logic, api.Sub(1, first))
	api.AssertIsEqual(api.Mul(linking, api.Sub(prevRelation, z[StateRelation])), 0)

	next[StateDegree] = api.Add(z[StateDegree], logic)
	next[StateScope] = api.Select(logic, api.Select(first, scope, z[StateScope]), z[StateScope])
	next[StateRelation] = api.Select(logic, relation, z[StateRelation])
	next[StateChaff] = logic

	return next, nil
}
