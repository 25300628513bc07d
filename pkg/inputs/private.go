// Package inputs defines the private data bound to one fold of the chain and
// lowers it to the fixed-shape field vectors the step circuit consumes.
package inputs

import (
	"errors"
	"fmt"
	"math/big"

	"grapevine/pkg/field"
)

// Shape of the marshaled private inputs.
const (
	PhraseLen = field.PhraseChunks
	SlotCount = 2
)

// Signal names of the marshaled private inputs.
const (
	SignalPhrase      = "phrase"
	SignalUsernames   = "usernames"
	SignalAuthSecrets = "auth_secrets"
)

var (
	ErrUninitializedInput = errors.New("private input is uninitialized")
	ErrIncompleteLink     = errors.New("first slot set without second slot")
	ErrMissingSecret      = errors.New("auth secret missing")
)

// PrivateInput is the private data for one step. The concrete variants are
// Chaff, FirstHop, Link, Genesis and Slots.
type PrivateInput interface {
	// Slots lowers the input to its optional-field form.
	Slots() Slots
	// validate checks the variant's own required fields.
	validate() error
}

// Chaff is a filler step that carries no real data.
type Chaff struct{}

// FirstHop starts a chain at Username. The first slot stays empty.
type FirstHop struct {
	Username string
	Secret   *big.Int
}

// Link binds the previous hop (A) to the next one (B).
type Link struct {
	UsernameA, UsernameB string
	SecretA, SecretB     *big.Int
}

// Genesis is the first hop of a chain together with the shared phrase.
type Genesis struct {
	Phrase   string
	Username string
	Secret   *big.Int
}

// Slots is the raw optional-field form. A nil field is absent.
type Slots struct {
	Phrase      *string
	Usernames   [2]*string
	AuthSecrets [2]*big.Int
	Chaff       bool
}

func (Chaff) Slots() Slots {
	return Slots{Chaff: true}
}

func (h FirstHop) Slots() Slots {
	return Slots{
		Usernames:   [2]*string{nil, &h.Username},
		AuthSecrets: [2]*big.Int{nil, h.Secret},
	}
}

func (l Link) Slots() Slots {
	return Slots{
		Usernames:   [2]*string{&l.UsernameA, &l.UsernameB},
		AuthSecrets: [2]*big.Int{l.SecretA, l.SecretB},
	}
}

func (g Genesis) Slots() Slots {
	s := FirstHop{Username: g.Username, Secret: g.Secret}.Slots()
	s.Phrase = &g.Phrase
	return s
}

func (s Slots) Slots() Slots {
	return s
}

// Uninitialized reports whether no data is present and the step is not
// marked as chaff either.
func (s Slots) Uninitialized() bool {
	return s.Phrase == nil &&
		s.Usernames[0] == nil && s.Usernames[1] == nil &&
		s.AuthSecrets[0] == nil && s.AuthSecrets[1] == nil &&
		!s.Chaff
}

func (Chaff) validate() error { return nil }

func (h FirstHop) validate() error {
	if h.Secret == nil {
		return fmt.Errorf("%w: first hop %q", ErrMissingSecret, h.Username)
	}
	return nil
}

func (l Link) validate() error {
	switch {
	case l.SecretA == nil:
		return fmt.Errorf("%w: link %q -> %q, first slot", ErrMissingSecret, l.UsernameA, l.UsernameB)
	case l.SecretB == nil:
		return fmt.Errorf("%w: link %q -> %q, second slot", ErrMissingSecret, l.UsernameA, l.UsernameB)
	}
	return nil
}

func (g Genesis) validate() error {
	if g.Secret == nil {
		return fmt.Errorf("%w: genesis %q", ErrMissingSecret, g.Username)
	}
	return nil
}

// Slots are checked by the marshaling policy itself.
func (Slots) validate() error { return nil }
