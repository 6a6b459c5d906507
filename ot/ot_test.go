//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func testRNG(t *testing.T) *RNG {
	t.Helper()
	rng, err := NewRNGFromEntropy(rand.Reader)
	if err != nil {
		t.Fatalf("NewRNGFromEntropy: %v", err)
	}
	return rng
}

func TestRNGDeterministic(t *testing.T) {
	var seed [SeedSize]byte
	for i := range seed {
		seed[i] = byte(i)
	}
	r0, err := NewRNG(seed)
	if err != nil {
		t.Fatal(err)
	}
	r1, err := NewRNG(seed)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 8; i++ {
		l0, err := r0.Label()
		if err != nil {
			t.Fatal(err)
		}
		l1, err := r1.Label()
		if err != nil {
			t.Fatal(err)
		}
		if !l0.Equal(l1) {
			t.Fatalf("same seed produced different labels at index %d", i)
		}
	}
}

func TestRNGDeltaLSB(t *testing.T) {
	rng := testRNG(t)
	delta, err := rng.Delta()
	if err != nil {
		t.Fatal(err)
	}
	if !delta.LSB() {
		t.Fatal("Δ must have its least-significant bit set")
	}
}

func TestLabelXorGroup(t *testing.T) {
	rng := testRNG(t)
	a, _ := rng.Label()
	b, _ := rng.Label()

	ab := a
	ab.Xor(b)
	ab.Xor(b)
	if !ab.Equal(a) {
		t.Fatal("a xor b xor b must equal a")
	}
}

func TestLabelBytesRoundTrip(t *testing.T) {
	rng := testRNG(t)
	l, _ := rng.Label()
	var buf LabelData
	data := l.Bytes(&buf)

	got, err := LabelFromBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(l) {
		t.Fatal("round trip through bytes changed the label")
	}
}

func TestCommitBindingAndHiding(t *testing.T) {
	r := make([]byte, OpeningSize)
	rand.Read(r)
	x := []byte("authenticated bit consistency challenge")

	c := Commit(r, x)
	if err := Open(c, r, x); err != nil {
		t.Fatalf("honest opening rejected: %v", err)
	}

	if err := Open(c, r, []byte("a different value")); err == nil {
		t.Fatal("commitment opened to a value it was not bound to")
	}

	r2 := make([]byte, OpeningSize)
	rand.Read(r2)
	c2 := Commit(r2, x)
	if bytes.Equal(c, c2) {
		t.Fatal("commitments with different randomness collided")
	}
}

func TestGarbleHashDomainSeparation(t *testing.T) {
	rng := testRNG(t)
	l, _ := rng.Label()

	g := GarbleHash(l, 7)
	e := ExtensionHash(l, 7)
	if g.Equal(e) {
		t.Fatal("garbling hash and OT-extension hash must be domain separated")
	}
}

func TestBaseOTTransfersChosenMessagesOnly(t *testing.T) {
	const k = 8
	senderRNG := testRNG(t)
	receiverRNG := testRNG(t)

	pairs := make([][2]Label, k)
	for i := range pairs {
		m0, _ := senderRNG.Label()
		m1, _ := senderRNG.Label()
		pairs[i] = [2]Label{m0, m1}
	}

	choices, err := RandomBaseOTChoices(k)
	if err != nil {
		t.Fatal(err)
	}

	senderState, msg1, err := BaseOTSenderOffer(k, senderRNG)
	if err != nil {
		t.Fatal(err)
	}
	receiverState, msg2, err := BaseOTReceiverChoose(msg1, choices, receiverRNG)
	if err != nil {
		t.Fatal(err)
	}
	msg3, err := BaseOTSenderRespond(senderState, msg2, pairs)
	if err != nil {
		t.Fatal(err)
	}
	got, err := BaseOTReceiverFinish(receiverState, msg3)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < k; i++ {
		want := pairs[i][0]
		if choices[i] {
			want = pairs[i][1]
		}
		if !got[i].Equal(want) {
			t.Fatalf("instance %d: receiver obtained the wrong message", i)
		}
	}
}

func TestBaseOTRejectsNonCanonicalPoint(t *testing.T) {
	senderRNG := testRNG(t)
	_, msg1, err := BaseOTSenderOffer(4, senderRNG)
	if err != nil {
		t.Fatal(err)
	}
	msg1.A[0] ^= 0xff

	receiverRNG := testRNG(t)
	choices, _ := RandomBaseOTChoices(4)
	_, _, err = BaseOTReceiverChoose(msg1, choices, receiverRNG)
	if err == nil {
		t.Fatal("expected a non-canonical base point to be rejected")
	}
}
