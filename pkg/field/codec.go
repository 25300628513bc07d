// Package field converts phrases, usernames and integers to and from BN254
// scalar field elements.
package field

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const (
	// PhraseChunks is the number of field elements a phrase occupies.
	PhraseChunks = 6
	// ChunkSize is the number of phrase bytes packed into one element.
	// One leading zero byte keeps every chunk below the modulus.
	ChunkSize = 31
	// MaxPhraseLength is the longest phrase, in bytes, that can be encoded.
	MaxPhraseLength = 180
	// MaxUsernameLength is the longest username, in bytes, that can be encoded.
	MaxUsernameLength = 30
)

var (
	ErrLengthExceeded = errors.New("length exceeded")
	ErrNegativeValue  = errors.New("negative value")
	ErrOutOfRange     = errors.New("value not below field modulus")
)

// EncodePhrase splits a phrase into six 31-byte chunks. Each chunk is placed
// after a zero byte in a 32-byte big-endian buffer; missing bytes stay zero.
func EncodePhrase(phrase string) ([PhraseChunks]fr.Element, error) {
	var out [PhraseChunks]fr.Element
	if len(phrase) > MaxPhraseLength {
		return out, fmt.Errorf("%w: phrase is %d bytes, max %d", ErrLengthExceeded, len(phrase), MaxPhraseLength)
	}

	raw := []byte(phrase)
	for i := range out {
		start := i * ChunkSize
		if start >= len(raw) {
			continue
		}
		end := min(start+ChunkSize, len(raw))

		var chunk [fr.Bytes]byte
		copy(chunk[1:], raw[start:end])
		out[i].SetBytes(chunk[:])
	}
	return out, nil
}

// DecodePhrase reverses EncodePhrase. Trailing zero bytes are treated as
// padding, so a phrase that ends in NUL bytes does not round-trip.
func DecodePhrase(chunks [PhraseChunks]fr.Element) (string, error) {
	raw := make([]byte, 0, PhraseChunks*ChunkSize)
	for i := range chunks {
		b := chunks[i].Bytes()
		if b[0] != 0 {
			return "", fmt.Errorf("%w: phrase chunk %d has a non-zero leading byte", ErrOutOfRange, i)
		}
		raw = append(raw, b[1:]...)
	}
	return string(bytes.TrimRight(raw, "\x00")), nil
}

// EncodeUsername right-aligns the username bytes in a 32-byte big-endian
// buffer.
func EncodeUsername(username string) (fr.Element, error) {
	var e fr.Element
	if len(username) > MaxUsernameLength {
		return e, fmt.Errorf("%w: username is %d bytes, max %d", ErrLengthExceeded, len(username), MaxUsernameLength)
	}

	var buf [fr.Bytes]byte
	copy(buf[fr.Bytes-len(username):], username)
	e.SetBytes(buf[:])
	return e, nil
}

// DecodeUsername reverses EncodeUsername.
func DecodeUsername(e fr.Element) (string, error) {
	b := e.Bytes()
	raw := bytes.TrimLeft(b[:], "\x00")
	if len(raw) > MaxUsernameLength {
		return "", fmt.Errorf("%w: element holds %d bytes, max %d", ErrLengthExceeded, len(raw), MaxUsernameLength)
	}
	return string(raw), nil
}

// Random samples an element uniformly below the modulus from rng. A nil rng
// falls back to crypto/rand.
func Random(rng io.Reader) (fr.Element, error) {
	var e fr.Element
	if rng == nil {
		rng = rand.Reader
	}
	v, err := rand.Int(rng, fr.Modulus())
	if err != nil {
		return e, fmt.Errorf("sample field element: %w", err)
	}
	e.SetBigInt(v)
	return e, nil
}

// ToBigInt returns the canonical integer value of e.
func ToBigInt(e fr.Element) *big.Int {
	return e.BigInt(new(big.Int))
}

// FromBigInt converts v to a field element without reducing it.
func FromBigInt(v *big.Int) (fr.Element, error) {
	var e fr.Element
	if v == nil {
		return e, fmt.Errorf("%w: nil integer", ErrOutOfRange)
	}
	if v.Sign() < 0 {
		return e, fmt.Errorf("%w: %s", ErrNegativeValue, v)
	}
	if v.Cmp(fr.Modulus()) >= 0 {
		return e, fmt.Errorf("%w: %s", ErrOutOfRange, v)
	}
	e.SetBigInt(v)
	return e, nil
}

// ToBigInts converts a slice of elements.
func ToBigInts(es []fr.Element) []*big.Int {
	out := make([]*big.Int, len(es))
	for i := range es {
		out[i] = ToBigInt(es[i])
	}
	return out
}

// FromBigInts converts a slice of integers, failing on the first bad value.
func FromBigInts(vs []*big.Int) ([]fr.Element, error) {
	out := make([]fr.Element, len(vs))
	for i, v := range vs {
		e, err := FromBigInt(v)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}
