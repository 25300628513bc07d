package inputs

import (
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"grapevine/pkg/field"
)

// Marshaled holds the three private vectors of one step, always fully populated.
type Marshaled struct {
	Phrase      [PhraseLen]fr.Element
	Usernames   [SlotCount]fr.Element
	AuthSecrets [SlotCount]fr.Element
}

// Named returns the vectors keyed by circuit signal name.
func (m *Marshaled) Named() map[string][]*big.Int {
	return map[string][]*big.Int{
		SignalPhrase:      field.ToBigInts(m.Phrase[:]),
		SignalUsernames:   field.ToBigInts(m.Usernames[:]),
		SignalAuthSecrets: field.ToBigInts(m.AuthSecrets[:]),
	}
}

// Marshal lowers in to circuit inputs. Absent values are replaced by uniform
// field elements drawn from rng (crypto/rand when nil), so chaff and real
// slots look alike:
//
//   - phrase: encoded when present, six random elements otherwise
//   - usernames, auth secrets: [a, b] when a is set (b is then required),
//     [0, b] when only b is set, two random elements when neither is
func Marshal(in PrivateInput, rng io.Reader) (*Marshaled, error) {
	if in == nil {
		return nil, ErrUninitializedInput
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	s := in.Slots()
	if s.Uninitialized() {
		return nil, ErrUninitializedInput
	}

	var (
		m   Marshaled
		err error
	)
	if s.Phrase != nil {
		if m.Phrase, err = field.EncodePhrase(*s.Phrase); err != nil {
			return nil, fmt.Errorf("phrase: %w", err)
		}
	} else {
		for i := range m.Phrase {
			if m.Phrase[i], err = field.Random(rng); err != nil {
				return nil, fmt.Errorf("phrase: %w", err)
			}
		}
	}

	m.Usernames, err = marshalPair(s.Usernames, func(u *string) (fr.Element, error) {
		return field.EncodeUsername(*u)
	}, rng)
	if err != nil {
		return nil, fmt.Errorf("usernames: %w", err)
	}

	m.AuthSecrets, err = marshalPair(s.AuthSecrets, field.FromBigInt, rng)
	if err != nil {
		return nil, fmt.Errorf("auth secrets: %w", err)
	}

	return &m, nil
}

func marshalPair[T any](pair [2]*T, encode func(*T) (fr.Element, error), rng io.Reader) ([2]fr.Element, error) {
	var (
		out [2]fr.Element
		err error
	)
	a, b := pair[0], pair[1]
	switch {
	case a != nil:
		if b == nil {
			return out, ErrIncompleteLink
		}
		if out[0], err = encode(a); err != nil {
			return out, err
		}
		if out[1], err = encode(b); err != nil {
			return out, err
		}
	case b != nil:
		if out[1], err = encode(b); err != nil {
			return out, err
		}
	default:
		for i := range out {
			if out[i], err = field.Random(rng); err != nil {
				return out, err
			}
		}
	}
	return out, nil
}
