package field

import (
	"io"
	"sync"

	"golang.org/x/crypto/chacha20"
)

// seededReader is a deterministic ChaCha20 keystream. Safe for concurrent use.
type seededReader struct {
	mu     sync.Mutex
	cipher *chacha20.Cipher
}

// NewSeededReader returns a reproducible CSPRNG keyed by seed. Two readers
// built from the same seed yield the same stream.
func NewSeededReader(seed [32]byte) io.Reader {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		// key and nonce sizes are fixed above
		panic(err)
	}
	return &seededReader{cipher: c}
}

func (r *seededReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(p)
	r.cipher.XORKeyStream(p, p)
	return len(p), nil
}
