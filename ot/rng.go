//
// rng.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gtank/ristretto255"
	"golang.org/x/crypto/chacha20"
)

// SeedSize is the size in bytes of an RNG seed.
const SeedSize = chacha20.KeySize

// RNG is a session-scoped, deterministically seeded random source. A
// session MUST draw its own seed; the RNG is never a process-global
// (see the environment's entropy-source contract).
type RNG struct {
	cipher *chacha20.Cipher
	seed   [SeedSize]byte
}

// NewRNG creates an RNG from a 32 byte seed, expanded with ChaCha20 in
// counter mode. Two RNGs constructed from the same seed produce the
// byte-identical stream, which is what the determinism property (fixed
// seeds ⇒ byte-identical transcripts) relies on.
func NewRNG(seed [SeedSize]byte) (*RNG, error) {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		return nil, fmt.Errorf("ot: new rng: %w", err)
	}
	return &RNG{cipher: c, seed: seed}, nil
}

// NewRNGFromEntropy draws a fresh seed from r and constructs an RNG
// from it. r is the externally supplied entropy source (e.g.
// crypto/rand.Reader); the core never reads entropy from a package
// global.
func NewRNGFromEntropy(r io.Reader) (*RNG, error) {
	var seed [SeedSize]byte
	if _, err := io.ReadFull(r, seed[:]); err != nil {
		return nil, fmt.Errorf("ot: seeding rng: %w", err)
	}
	return NewRNG(seed)
}

// Read implements io.Reader by encrypting an all-zero keystream
// buffer, i.e. draws bytes straight from the ChaCha20 stream.
func (rng *RNG) Read(buf []byte) (int, error) {
	for i := range buf {
		buf[i] = 0
	}
	rng.cipher.XORKeyStream(buf, buf)
	return len(buf), nil
}

// Label draws a uniformly random 128 bit label.
func (rng *RNG) Label() (Label, error) {
	var data LabelData
	if _, err := io.ReadFull(rng, data[:]); err != nil {
		return Label{}, err
	}
	var l Label
	l.SetData(&data)
	return l, nil
}

// Delta draws a fresh global offset Δ with its least-significant bit
// and its point-and-permute bit (Label.S) both forced to 1, so that
// the two labels of every free-XOR wire carry opposite select bits.
func (rng *RNG) Delta() (Label, error) {
	d, err := rng.Label()
	if err != nil {
		return Label{}, err
	}
	d.D1 |= 1
	d.SetS(true)
	return d, nil
}

// Bool draws a uniformly random bit.
func (rng *RNG) Bool() (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(rng, b[:]); err != nil {
		return false, err
	}
	return b[0]&1 == 1, nil
}

// Bools draws n uniformly random bits.
func (rng *RNG) Bools(n int) ([]bool, error) {
	out := make([]bool, n)
	buf := make([]byte, (n+7)/8)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		out[i] = (buf[i/8]>>uint(i%8))&1 == 1
	}
	return out, nil
}

// Scalar draws a uniformly random Ristretto scalar, used by the base
// OT.
func (rng *RNG) Scalar() (*ristretto255.Scalar, error) {
	var wide [64]byte
	if _, err := io.ReadFull(rng, wide[:]); err != nil {
		return nil, err
	}
	return ristretto255.NewScalar().FromUniformBytes(wide[:]), nil
}

// Uint64 draws a uniformly random uint64.
func (rng *RNG) Uint64() (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
