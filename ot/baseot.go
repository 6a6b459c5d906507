//
// baseot.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

/*

Base OT: a batch of k 1-of-2 OTs over the Ristretto prime-order group,
following the "Simplest OT" construction (Chou, Orlandi, LATINCRYPT
2015, https://eprint.iacr.org/2015/267.pdf), generalized from its usual
P-256 instantiation to the Ristretto prime-order group. Ristretto
scalar sampling and element encoding follow the same
FromUniformBytes/Encode/Decode shape used for Ristretto-based OPRFs,
generalized to a batch 1-of-2 OT.

The protocol below never touches a socket: each step
takes the previous message and returns the next one, so the six-round
FSM in package protocol can drive it without any I/O assumption.

*/

package ot

import (
	"crypto/rand"
	"fmt"

	"github.com/gtank/ristretto255"
)

// BaseOTMsg1 is the sender's first message: the shared base point A.
type BaseOTMsg1 struct {
	A []byte // Ristretto element encoding, 32 bytes.
}

// BaseOTMsg2 is the receiver's response: one element B_i per OT
// instance, encoding both the instance's public key and its choice
// bit.
type BaseOTMsg2 struct {
	B [][]byte // k Ristretto element encodings.
}

// BaseOTMsg3 is the sender's final message: the one-time-padded
// message pairs.
type BaseOTMsg3 struct {
	E0 []LabelData // k ciphertexts for the "0" message.
	E1 []LabelData // k ciphertexts for the "1" message.
}

// BaseOTSenderState is the sender's per-session state between Offer
// and Respond.
type BaseOTSenderState struct {
	k int
	a *ristretto255.Scalar
	A *ristretto255.Element
}

// BaseOTReceiverState is the receiver's per-session state between
// Choose and Finish.
type BaseOTReceiverState struct {
	k       int
	choices []bool
	b       []*ristretto255.Scalar
	keys    []Label // k_{c_i} per instance, derived in Choose.
}

// BaseOTSenderOffer starts the sender side of k parallel base OTs: it
// samples the sender's scalar a and publishes A = g^a.
func BaseOTSenderOffer(k int, rng *RNG) (*BaseOTSenderState, BaseOTMsg1, error) {
	if k <= 0 {
		return nil, BaseOTMsg1{}, fmt.Errorf("ot: base ot requires k > 0")
	}
	a, err := rng.Scalar()
	if err != nil {
		return nil, BaseOTMsg1{}, err
	}
	A := ristretto255.NewElement().ScalarBaseMult(a)

	state := &BaseOTSenderState{k: k, a: a, A: A}
	return state, BaseOTMsg1{A: A.Encode(nil)}, nil
}

// BaseOTReceiverChoose is the receiver side: given the sender's A and
// a choice bit vector of length k, it samples per-instance scalars
// b_i and publishes B_i = g^{b_i} (+ A if the choice bit is 1). It
// also derives the chosen key k_{c_i} = H(A^{b_i}) locally; the
// unchosen key is never computable without a.
func BaseOTReceiverChoose(msg1 BaseOTMsg1, choices []bool, rng *RNG) (
	*BaseOTReceiverState, BaseOTMsg2, error) {

	A := ristretto255.NewElement()
	if err := A.Decode(msg1.A); err != nil {
		return nil, BaseOTMsg2{}, fmt.Errorf("ot: non-canonical base point: %w", err)
	}

	k := len(choices)
	state := &BaseOTReceiverState{
		k:       k,
		choices: append([]bool(nil), choices...),
		b:       make([]*ristretto255.Scalar, k),
		keys:    make([]Label, k),
	}
	msg2 := BaseOTMsg2{B: make([][]byte, k)}

	for i := 0; i < k; i++ {
		b, err := rng.Scalar()
		if err != nil {
			return nil, BaseOTMsg2{}, err
		}
		state.b[i] = b

		Bi := ristretto255.NewElement().ScalarBaseMult(b)
		if choices[i] {
			Bi.Add(Bi, A)
		}
		msg2.B[i] = Bi.Encode(nil)

		// k_{c_i} = H(A^{b_i}), computable by the receiver without a.
		shared := ristretto255.NewElement().ScalarMult(b, A)
		state.keys[i] = HashBytesToLabel(domainBaseOT, shared.Encode(nil))
	}

	return state, msg2, nil
}

// BaseOTSenderRespond completes the sender side: given the receiver's
// B_i values and the k message pairs to transfer, it derives both
// sender-side keys per instance and returns the one-time-padded
// ciphertexts. pairs[i] = (m0, m1) for instance i.
func BaseOTSenderRespond(state *BaseOTSenderState, msg2 BaseOTMsg2,
	pairs [][2]Label) (BaseOTMsg3, error) {

	if len(msg2.B) != state.k {
		return BaseOTMsg3{}, fmt.Errorf(
			"ot: base ot: expected %d choices, got %d", state.k, len(msg2.B))
	}
	if len(pairs) != state.k {
		return BaseOTMsg3{}, fmt.Errorf(
			"ot: base ot: expected %d message pairs, got %d", state.k, len(pairs))
	}

	msg3 := BaseOTMsg3{
		E0: make([]LabelData, state.k),
		E1: make([]LabelData, state.k),
	}

	for i := 0; i < state.k; i++ {
		B := ristretto255.NewElement()
		if err := B.Decode(msg2.B[i]); err != nil {
			return BaseOTMsg3{}, fmt.Errorf(
				"ot: base ot: non-canonical point at index %d: %w", i, err)
		}

		// k0 = H(B^a), k1 = H((B - A)^a).
		k0Point := ristretto255.NewElement().ScalarMult(state.a, B)
		k0 := HashBytesToLabel(domainBaseOT, k0Point.Encode(nil))

		BminusA := ristretto255.NewElement().Subtract(B, state.A)
		k1Point := ristretto255.NewElement().ScalarMult(state.a, BminusA)
		k1 := HashBytesToLabel(domainBaseOT, k1Point.Encode(nil))

		m0, m1 := pairs[i][0], pairs[i][1]
		m0.Xor(k0)
		m1.Xor(k1)

		m0.GetData(&msg3.E0[i])
		m1.GetData(&msg3.E1[i])
	}

	return msg3, nil
}

// BaseOTReceiverFinish decrypts the sender's ciphertexts with the
// receiver's own chosen keys, returning exactly one message per
// instance: {m_{c_i,i}}.
func BaseOTReceiverFinish(state *BaseOTReceiverState, msg3 BaseOTMsg3) (
	[]Label, error) {

	if len(msg3.E0) != state.k || len(msg3.E1) != state.k {
		return nil, fmt.Errorf("ot: base ot: malformed final message")
	}

	out := make([]Label, state.k)
	for i := 0; i < state.k; i++ {
		var c LabelData
		if state.choices[i] {
			c = msg3.E1[i]
		} else {
			c = msg3.E0[i]
		}
		var m Label
		m.SetData(&c)
		m.Xor(state.keys[i])
		out[i] = m
	}
	return out, nil
}

// RandomBaseOTChoices draws k uniformly random choice bits using the
// crypto/rand source directly, for callers bootstrapping a base OT
// outside of a session RNG (e.g. tests).
func RandomBaseOTChoices(k int) ([]bool, error) {
	buf := make([]byte, (k+7)/8)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	out := make([]bool, k)
	for i := 0; i < k; i++ {
		out[i] = (buf[i/8]>>uint(i%8))&1 == 1
	}
	return out, nil
}
