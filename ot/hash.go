//
// hash.go
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

	"lukechampine.com/blake3"
)

// Domain separation prefixes for the Blake3-keyed random oracle. Every
// use of Hash/Commit below mixes in one of these tags so that the
// garbling hash, the OT-extension ROM, and the commitment scheme never
// collide on the same Blake3 input even when the label/tweak material
// happens to coincide.
const (
	domainGarble      = "wrk17/garble/v1"
	domainOTExtension = "wrk17/otext/v1"
	domainCommit      = "wrk17/commit/v1"
	domainInputDeliv  = "wrk17/input/v1"
)

// Hash is the correlation-robust, tweakable hash behind the half-gates
// row cipher and the input-label delivery pads. Tweaks MUST be unique
// within a session; gate indices and input wire indices serve that role
// at their respective call sites.
func Hash(domain string, label Label, tweak uint64) Label {
	h := blake3.New(16, nil)
	io.WriteString(h, domain)
	var buf LabelData
	label.GetData(&buf)
	h.Write(buf[:])
	var t [8]byte
	binary.BigEndian.PutUint64(t[:], tweak)
	h.Write(t[:])

	var out Label
	sum := h.Sum(nil)
	out.SetBytes(sum[:16])
	return out
}

// GarbleHash is Hash specialized to the garbling domain; used by
// package circuit's AND-gate garbling and Circuit.Eval as
// H(label, gate_id‖row).
func GarbleHash(label Label, tweak uint64) Label {
	return Hash(domainGarble, label, tweak)
}

// GarbleHash2 is the two-input variant of GarbleHash, used by the
// classic (non-half-gates) garbled row construction for OR gates:
// H(a, b, tweak). Blake3's domain separation comes from concatenating
// a and b into one hash input, so unlike an AES-based construction
// this needs no GF(2^128) doubling to keep the two inputs from
// cancelling against each other.
func GarbleHash2(a, b Label, tweak uint64) Label {
	h := blake3.New(16, nil)
	io.WriteString(h, domainGarble)
	var buf LabelData
	a.GetData(&buf)
	h.Write(buf[:])
	b.GetData(&buf)
	h.Write(buf[:])
	var t [8]byte
	binary.BigEndian.PutUint64(t[:], tweak)
	h.Write(t[:])

	var out Label
	sum := h.Sum(nil)
	out.SetBytes(sum[:16])
	return out
}

// ExtensionHash is Hash specialized to the OT-extension domain. Package
// otext does not call it: its row expansion uses the AES-CTR PRG in
// otext/prg.go.
func ExtensionHash(label Label, tweak uint64) Label {
	return Hash(domainOTExtension, label, tweak)
}

// InputDeliveryHash is Hash specialized to the input-label delivery
// domain: package protocol uses it to encrypt an input wire's two
// garbled labels under the OT-extension key/mac authenticating that
// wire's bit, so the Evaluator recovers exactly the one label matching
// its own authenticated value without a dedicated OT round trip.
func InputDeliveryHash(label Label, tweak uint64) Label {
	return Hash(domainInputDeliv, label, tweak)
}

// domainBaseOT separates the base-OT key-derivation hash from every
// other Blake3 use in this package.
const domainBaseOT = "wrk17/baseot/v1"

// HashBytesToLabel derives a 128 bit label from arbitrary-length
// input, domain-separated. Used by the base OT to turn a Ristretto
// element encoding into a one-time pad for a wire label.
func HashBytesToLabel(domain string, data ...[]byte) Label {
	h := blake3.New(16, nil)
	io.WriteString(h, domain)
	for _, d := range data {
		h.Write(d)
	}
	var out Label
	sum := h.Sum(nil)
	out.SetBytes(sum[:16])
	return out
}

// CommitSize is the byte length of a commitment produced by Commit.
const CommitSize = 32

// OpeningSize is the byte length of the randomness used to open a
// commitment.
const OpeningSize = 32

// Commit computes Commit(x; r) = Blake3(domain ‖ r ‖ x), binding and
// hiding under the random-oracle model. r is freshly drawn by the
// caller (typically from the session RNG) and must be kept secret
// until the decommitment phase.
func Commit(r []byte, x []byte) []byte {
	h := blake3.New(CommitSize, nil)
	io.WriteString(h, domainCommit)
	h.Write(r)
	h.Write(x)
	return h.Sum(nil)
}

// Open verifies that commitment was produced by Commit(x; r),
// returning an error if the opening is inconsistent with the prior
// binding (spec's CommitmentCheck failure).
func Open(commitment, r, x []byte) error {
	got := Commit(r, x)
	if len(got) != len(commitment) || !constantTimeEqual(got, commitment) {
		return fmt.Errorf("ot: commitment does not open to the given value")
	}
	return nil
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}

// XOF returns an extendable-output Blake3 reader seeded with domain
// and x, used wherever a component needs more than 16 or 32 bytes of
// oracle output (e.g. otext's consistency challenge bits).
func XOF(domain string, x []byte) io.Reader {
	h := blake3.New(32, nil)
	io.WriteString(h, domain)
	h.Write(x)
	return h.XOF()
}
