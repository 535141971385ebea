package chainhash

import (
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// HashWriter is used to incrementally hash data without concatenating all of
// the data to a single buffer. It exposes an io.Writer api and a Finalize
// function to get the resulting hash.
// HashWriter.Write(slice).Finalize() == HashData(slice)
type HashWriter struct {
	inner hash.Hash
}

// NewHashWriter returns a new HashWriter.
func NewHashWriter() *HashWriter {
	inner, err := blake2b.New256(nil)
	if err != nil {
		panic(fmt.Sprintf("unkeyed blake2b.New256 can never fail: '%+v'", err))
	}
	return &HashWriter{inner}
}

// Write will always return (len(p), nil).
func (h *HashWriter) Write(p []byte) (n int, err error) {
	return h.inner.Write(p)
}

// Finalize returns the resulting hash.
func (h *HashWriter) Finalize() Hash {
	res := Hash{}
	// Can never happen, blake2b's Sum is 32 bytes and so is chainhash.Hash.
	err := res.SetBytes(h.inner.Sum(nil))
	if err != nil {
		panic(fmt.Sprintf("blake2b.Sum is 32 bytes and so is chainhash.Hash: '%+v'", err))
	}
	return res
}

// HashData hashes the given byte slice in a single call.
func HashData(buf []byte) Hash {
	return Hash(blake2b.Sum256(buf))
}
