//
// label.go
//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

// Package ot implements the cryptographic primitives shared by the
// garbling, OT extension, and base OT layers: the 128 bit wire
// label, the per-session RNG, the correlation-robust garbling hash,
// and the Ristretto-based base oblivious transfer.
package ot

import (
	"encoding/binary"
	"fmt"
)

// Wire holds a wire's two labels, one per semantic bit.
type Wire struct {
	L0 Label
	L1 Label
}

func (w Wire) String() string {
	return fmt.Sprintf("%s/%s", w.L0, w.L1)
}

// Xor returns the free-XOR output wire of w and o: L0 = w.L0 xor o.L0
// and L1 = w.L0 xor o.L1. When both inputs satisfy L1 = L0 xor Δ, so
// does the result.
func (w Wire) Xor(o Wire) Wire {
	l0 := w.L0
	l0.Xor(o.L0)
	l1 := w.L0
	l1.Xor(o.L1)
	return Wire{L0: l0, L1: l1}
}

// Label is a 128 bit wire label, used both as a group element under
// XOR (free-XOR) and as a tweakable hash input (garbling, OT
// extension).
type Label struct {
	D0 uint64
	D1 uint64
}

// LabelData is a label's fixed-size byte encoding.
type LabelData [16]byte

func (l Label) String() string {
	return fmt.Sprintf("%016x%016x", l.D0, l.D1)
}

// Equal tests if the labels are equal.
func (l Label) Equal(o Label) bool {
	return l.D0 == o.D0 && l.D1 == o.D1
}

// NewTweak creates a label from a 32 bit tweak value, placed in the
// label's low-order word.
func NewTweak(tweak uint32) Label {
	return Label{
		D1: uint64(tweak),
	}
}

// S tests the label's point-and-permute bit.
func (l Label) S() bool {
	return (l.D0 & 0x8000000000000000) != 0
}

// SetS sets the label's point-and-permute bit.
func (l *Label) SetS(set bool) {
	if set {
		l.D0 |= 0x8000000000000000
	} else {
		l.D0 &= 0x7fffffffffffffff
	}
}

// LSB returns the label's least-significant bit. The global offset
// Δ MUST have LSB(Δ) = 1 (free-XOR with point-and-permute).
func (l Label) LSB() bool {
	return (l.D1 & 1) != 0
}

// Mul2 multiplies the label by 2 in GF(2^128).
func (l *Label) Mul2() {
	l.D0 <<= 1
	l.D0 |= (l.D1 >> 63)
	l.D1 <<= 1
}

// Mul4 multiplies the label by 4 in GF(2^128).
func (l *Label) Mul4() {
	l.D0 <<= 2
	l.D0 |= (l.D1 >> 62)
	l.D1 <<= 2
}

// Xor xors the label with the argument label in place.
func (l *Label) Xor(o Label) {
	l.D0 ^= o.D0
	l.D1 ^= o.D1
}

// Xor3 returns a ^ b ^ c without mutating any argument.
func Xor3(a, b, c Label) Label {
	r := a
	r.Xor(b)
	r.Xor(c)
	return r
}

// GetData encodes the label into buf.
func (l Label) GetData(buf *LabelData) {
	binary.BigEndian.PutUint64(buf[0:8], l.D0)
	binary.BigEndian.PutUint64(buf[8:16], l.D1)
}

// SetData decodes the label from buf.
func (l *Label) SetData(data *LabelData) {
	l.D0 = binary.BigEndian.Uint64((*data)[0:8])
	l.D1 = binary.BigEndian.Uint64((*data)[8:16])
}

// Bytes returns the label's data as bytes, using buf as scratch
// space.
func (l Label) Bytes(buf *LabelData) []byte {
	l.GetData(buf)
	return buf[:]
}

// SetBytes sets the label from a 16 byte slice.
func (l *Label) SetBytes(data []byte) {
	l.D0 = binary.BigEndian.Uint64(data[0:8])
	l.D1 = binary.BigEndian.Uint64(data[8:16])
}

// ToBytes returns the label encoded as a fresh 16 byte slice.
func (l Label) ToBytes() []byte {
	var buf LabelData
	l.GetData(&buf)
	return buf[:]
}

// LabelFromBytes decodes a label from a 16 byte slice.
func LabelFromBytes(data []byte) (Label, error) {
	if len(data) != 16 {
		return Label{}, fmt.Errorf("ot: invalid label length %d", len(data))
	}
	var l Label
	l.SetBytes(data)
	return l, nil
}
