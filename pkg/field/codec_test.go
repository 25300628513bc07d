package field

import (
	"bytes"
	"io"
	"math/big"
	"strings"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func TestPhraseRoundTrip(t *testing.T) {
	phrases := []string{
		"",
		"This is a secret",
		strings.Repeat("a", ChunkSize),
		strings.Repeat("b", ChunkSize+1),
		strings.Repeat("ü", 45), // 90 bytes of multi-byte runes
		strings.Repeat("z", MaxPhraseLength),
	}

	for _, phrase := range phrases {
		encoded, err := EncodePhrase(phrase)
		require.NoError(t, err)

		decoded, err := DecodePhrase(encoded)
		require.NoError(t, err)
		require.Equal(t, phrase, decoded)
	}
}

func TestPhraseChunkLayout(t *testing.T) {
	phrase := strings.Repeat("x", ChunkSize) + "yz"
	encoded, err := EncodePhrase(phrase)
	require.NoError(t, err)

	first := encoded[0].Bytes()
	require.Equal(t, byte(0), first[0])
	require.Equal(t, []byte(strings.Repeat("x", ChunkSize)), first[1:])

	// partial chunk: bytes follow the zero byte, low end padded with zeros
	second := encoded[1].Bytes()
	want := make([]byte, fr.Bytes)
	copy(want[1:], "yz")
	require.Equal(t, want, second[:])

	for i := 2; i < PhraseChunks; i++ {
		require.True(t, encoded[i].IsZero(), "chunk %d should be empty", i)
	}
}

func TestPhraseTooLong(t *testing.T) {
	_, err := EncodePhrase(strings.Repeat("a", MaxPhraseLength+1))
	require.ErrorIs(t, err, ErrLengthExceeded)
}

func TestUsernameRoundTrip(t *testing.T) {
	for _, name := range []string{"", "alice", "charlie", strings.Repeat("u", MaxUsernameLength)} {
		e, err := EncodeUsername(name)
		require.NoError(t, err)

		decoded, err := DecodeUsername(e)
		require.NoError(t, err)
		require.Equal(t, name, decoded)
	}
}

func TestUsernameEncoding(t *testing.T) {
	e, err := EncodeUsername("alice")
	require.NoError(t, err)
	require.Zero(t, new(big.Int).SetBytes([]byte("alice")).Cmp(ToBigInt(e)))

	_, err = EncodeUsername(strings.Repeat("u", MaxUsernameLength+1))
	require.ErrorIs(t, err, ErrLengthExceeded)
}

func TestBigIntConversion(t *testing.T) {
	var x fr.Element
	x.SetRandom()

	back, err := FromBigInt(ToBigInt(x))
	require.NoError(t, err)
	require.True(t, back.Equal(&x))

	_, err = FromBigInt(big.NewInt(-1))
	require.ErrorIs(t, err, ErrNegativeValue)

	_, err = FromBigInt(fr.Modulus())
	require.ErrorIs(t, err, ErrOutOfRange)

	top := new(big.Int).Sub(fr.Modulus(), big.NewInt(1))
	e, err := FromBigInt(top)
	require.NoError(t, err)
	require.Zero(t, top.Cmp(ToBigInt(e)))
}

func TestRandom(t *testing.T) {
	a, err := Random(nil)
	require.NoError(t, err)
	b, err := Random(nil)
	require.NoError(t, err)
	require.False(t, a.Equal(&b))
	require.Equal(t, -1, ToBigInt(a).Cmp(fr.Modulus()))
}

func TestSeededReader(t *testing.T) {
	seed := [32]byte{1, 2, 3}

	r1 := NewSeededReader(seed)
	r2 := NewSeededReader(seed)
	for i := 0; i < 4; i++ {
		a, err := Random(r1)
		require.NoError(t, err)
		b, err := Random(r2)
		require.NoError(t, err)
		require.True(t, a.Equal(&b), "draw %d diverged", i)
	}

	other := NewSeededReader([32]byte{9})
	buf1 := make([]byte, 64)
	buf2 := make([]byte, 64)
	_, err := io.ReadFull(NewSeededReader(seed), buf1)
	require.NoError(t, err)
	_, err = io.ReadFull(other, buf2)
	require.NoError(t, err)
	require.False(t, bytes.Equal(buf1, buf2))
}
