//
// alsz.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package otext implements the ALSZ13-style OT extension that turns a
// batch of base OTs (package ot) into the correlated, authenticated
// bits consumed by package share. The row-expansion structure (PRG a
// base-OT seed per row, exchange a correction matrix, assemble
// columns) follows the standard IKNP/ALSZ extension shape, generalized
// to produce a MAC/key pair per column instead of a pair of wire
// labels.
package otext

import (
	"fmt"

	"github.com/wrk17/mpcfsm/ot"
)

// K is the number of base OTs underlying the extension (the security
// parameter).
const K = 128

// SenderSeeds holds the verifier side's base-OT-derived seeds: one
// seed per row, chosen via base OT with choice bits equal to the bits
// of Δ. The verifier is always the session's Contributor, who also
// owns Δ for circuit garbling (see circuit.Garble) — WRK17's
// authenticated garbling uses one global Δ for both.
type SenderSeeds struct {
	Delta ot.Label
	seeds [K]ot.LabelData
}

// NewSenderSeeds builds the verifier's seed state from the K labels
// obtained as a base-OT receiver with choice bits Delta's bits.
func NewSenderSeeds(baseOTChosen []ot.Label, delta ot.Label) (*SenderSeeds, error) {
	if len(baseOTChosen) != K {
		return nil, fmt.Errorf("otext: expected %d base OT outputs, got %d",
			K, len(baseOTChosen))
	}
	s := &SenderSeeds{Delta: delta}
	for i := 0; i < K; i++ {
		baseOTChosen[i].GetData(&s.seeds[i])
	}
	return s, nil
}

// DeltaChoices returns the K choice bits a base-OT receiver must use
// to bootstrap a SenderSeeds for the given Δ: choice bit i is bit i of
// Δ (bit 0 = D1's LSB, bit 127 = D0's MSB), matching ot.LabelData's
// big-endian byte layout.
func DeltaChoices(delta ot.Label) []bool {
	var data ot.LabelData
	delta.GetData(&data)
	choices := make([]bool, K)
	for i := 0; i < K; i++ {
		byteIdx := 15 - i/8
		bitIdx := uint(i % 8)
		choices[i] = (data[byteIdx]>>bitIdx)&1 == 1
	}
	return choices
}

// ReceiverSeeds holds the holder side's base-OT-derived seed pairs:
// both seeds per row, since the holder is the base-OT sender and
// generated them itself. The holder is always the session's
// Evaluator.
type ReceiverSeeds struct {
	seed0 [K]ot.LabelData
	seed1 [K]ot.LabelData
}

// NewReceiverSeedPairs draws K fresh random label pairs for the
// holder to offer over base OT, returning both the pairs (to pass to
// ot.BaseOTSenderRespond) and the resulting ReceiverSeeds.
func NewReceiverSeedPairs(rng *ot.RNG) ([][2]ot.Label, *ReceiverSeeds, error) {
	pairs := make([][2]ot.Label, K)
	rs := &ReceiverSeeds{}
	for i := 0; i < K; i++ {
		l0, err := rng.Label()
		if err != nil {
			return nil, nil, err
		}
		l1, err := rng.Label()
		if err != nil {
			return nil, nil, err
		}
		pairs[i] = [2]ot.Label{l0, l1}
		l0.GetData(&rs.seed0[i])
		l1.GetData(&rs.seed1[i])
	}
	return pairs, rs, nil
}

// UMatrix is the receiver's correction matrix, one row of m bits per
// base-OT column.
type UMatrix struct {
	RowBytes int
	Rows     [K][]byte
}

func prgRow(seed *ot.LabelData, n int) ([]byte, error) {
	out := make([]byte, (n+7)/8)
	if err := prgAESCTR(seed[:], out); err != nil {
		return nil, fmt.Errorf("otext: prg: %w", err)
	}
	return out, nil
}

func xorBytes(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

func setBit(buf []byte, i int, v bool) {
	if v {
		buf[i/8] |= 1 << uint(i%8)
	}
}

func getBit(buf []byte, i int) bool {
	return (buf[i/8]>>uint(i%8))&1 == 1
}

// columnLabel assembles the 128 rows' bit j into a single label,
// where bit i of the result is bit j of rows[i].
func columnLabel(rows [K][]byte, rowBytes, j int) ot.Label {
	var data ot.LabelData
	for i := 0; i < K; i++ {
		if getBit(rows[i], j) {
			byteIdx := 15 - i/8
			bitIdx := uint(i % 8)
			data[byteIdx] |= 1 << bitIdx
		}
	}
	var l ot.Label
	l.SetData(&data)
	return l
}

// ExpandRequest is the holder's (Evaluator's) half of one extension
// batch: given m authenticated-bit values x to request, it computes
// the two PRG rows per base-OT column, the U correction matrix to
// send, and its own local (value, mac) for every column.
//
// x's bits are the Evaluator's own secret input to this batch — they
// may be real circuit input bits or random bits consumed as AND-triple
// material (package protocol puts both into the one Round2 batch);
// either way the sender/verifier never learns x.
func (rs *ReceiverSeeds) ExpandRequest(x []bool) (UMatrix, []bool, []ot.Label, error) {
	m := len(x)
	rowBytes := (m + 7) / 8

	xBytes := make([]byte, rowBytes)
	for i, b := range x {
		setBit(xBytes, i, b)
	}

	var t0, t1 [K][]byte
	var u UMatrix
	u.RowBytes = rowBytes
	for i := 0; i < K; i++ {
		row0, err := prgRow(&rs.seed0[i], m)
		if err != nil {
			return UMatrix{}, nil, nil, err
		}
		row1, err := prgRow(&rs.seed1[i], m)
		if err != nil {
			return UMatrix{}, nil, nil, err
		}
		t0[i] = row0
		t1[i] = row1
		row := make([]byte, rowBytes)
		xorBytes(row, t0[i], t1[i])
		xorBytes(row, row, xBytes)
		u.Rows[i] = row
	}

	macs := make([]ot.Label, m)
	for j := 0; j < m; j++ {
		macs[j] = columnLabel(t0, rowBytes, j)
	}

	return u, append([]bool(nil), x...), macs, nil
}

// ExpandRespond is the verifier's (Contributor's) half: given the
// holder's U matrix and the number of columns m, it reconstructs its
// per-column verification keys using only its own seeds and Δ.
func (s *SenderSeeds) ExpandRespond(m int, u UMatrix) ([]ot.Label, error) {
	rowBytes := (m + 7) / 8
	if u.RowBytes != rowBytes {
		return nil, fmt.Errorf("otext: U matrix row width mismatch: got %d, want %d",
			u.RowBytes, rowBytes)
	}
	choices := DeltaChoices(s.Delta)

	var rows [K][]byte
	for i := 0; i < K; i++ {
		row, err := prgRow(&s.seeds[i], m)
		if err != nil {
			return nil, err
		}
		if choices[i] {
			if len(u.Rows[i]) != rowBytes {
				return nil, fmt.Errorf("otext: malformed U row %d", i)
			}
			xorBytes(row, row, u.Rows[i])
		}
		rows[i] = row
	}

	keys := make([]ot.Label, m)
	for j := 0; j < m; j++ {
		keys[j] = columnLabel(rows, rowBytes, j)
	}
	return keys, nil
}
