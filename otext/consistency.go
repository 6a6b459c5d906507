//
// consistency.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"io"

	"github.com/wrk17/mpcfsm/ot"
)

const domainChallenge = "wrk17/otext/challenge/v1"

// ConsistencyChallenge derives the m coin-toss bits used to batch-check
// an extension request against the transcript exchanged so far (the U
// matrix bytes). Both parties compute the same challenge from the same
// transcript, which is a standard Fiat-Shamir instantiation of the
// abstract "commit then open a joint coin toss" requirement: the
// receiver's seeds (and hence U) are fixed before either party can
// learn the challenge, so the check is sound against a receiver who
// only decides how to cheat after seeing it.
func ConsistencyChallenge(transcript []byte, m int) []bool {
	xof := ot.XOF(domainChallenge, transcript)
	buf := make([]byte, (m+7)/8)
	io.ReadFull(xof, buf)
	out := make([]bool, m)
	for i := 0; i < m; i++ {
		out[i] = getBit(buf, i)
	}
	return out
}

// Transcript concatenates a UMatrix's rows into the byte string
// consistency challenges are derived from.
func (u UMatrix) Transcript() []byte {
	out := make([]byte, 0, K*u.RowBytes)
	for i := 0; i < K; i++ {
		out = append(out, u.Rows[i]...)
	}
	return out
}

// OpenCombination is the holder's side of the batch consistency check:
// given the challenge and its own local (value, mac) per column, it
// computes and reveals the single combined bit and combined MAC.
func OpenCombination(values []bool, macs []ot.Label, challenge []bool) (bool, ot.Label) {
	var combinedValue bool
	var combinedMac ot.Label
	for j, c := range challenge {
		if !c {
			continue
		}
		combinedValue = combinedValue != values[j]
		combinedMac.Xor(macs[j])
	}
	return combinedValue, combinedMac
}

// VerifyCombination is the verifier's side: given the challenge, its
// own keys, Δ, and the holder's revealed (combinedValue, combinedMac),
// it checks the authenticated-bit relation on the combined value.
func VerifyCombination(keys []ot.Label, challenge []bool, delta ot.Label,
	combinedValue bool, combinedMac ot.Label) bool {

	var combinedKey ot.Label
	for j, c := range challenge {
		if !c {
			continue
		}
		combinedKey.Xor(keys[j])
	}
	want := combinedKey
	if combinedValue {
		want.Xor(delta)
	}
	return want.Equal(combinedMac)
}
