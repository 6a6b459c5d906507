//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package share

import (
	"crypto/rand"
	"testing"

	"github.com/wrk17/mpcfsm/ot"
	"github.com/wrk17/mpcfsm/otext"
)

func testRNG(t *testing.T) *ot.RNG {
	t.Helper()
	rng, err := ot.NewRNGFromEntropy(rand.Reader)
	if err != nil {
		t.Fatalf("NewRNGFromEntropy: %v", err)
	}
	return rng
}

func TestBitXorAlgebraPreservesAuthentication(t *testing.T) {
	rng := testRNG(t)
	delta, _ := rng.Delta()
	key0, _ := rng.Label()
	key1, _ := rng.Label()

	v0, v1 := true, false
	mac0 := key0
	if v0 {
		mac0.Xor(delta)
	}
	mac1 := key1
	if v1 {
		mac1.Xor(delta)
	}

	holder0 := NewHolderBit(v0, mac0)
	holder1 := NewHolderBit(v1, mac1)
	verifier0 := NewVerifierBit(key0)
	verifier1 := NewVerifierBit(key1)

	hx := holder0.Xor(holder1)
	vx := verifier0.Xor(verifier1)

	want := vx.Key
	if hx.Value {
		want.Xor(delta)
	}
	if !want.Equal(hx.Mac) {
		t.Fatal("xor of two authenticated bits broke the mac/key invariant")
	}
}

func TestVerifyOpenAcceptsHonestRejectsForged(t *testing.T) {
	rng := testRNG(t)
	delta, _ := rng.Delta()
	key, _ := rng.Label()

	verifier := NewVerifierBit(key)
	mac := key
	mac.Xor(delta) // value = true

	if _, ok := VerifyOpen(verifier, true, mac, delta); !ok {
		t.Fatal("honest opening rejected")
	}
	if _, ok := VerifyOpen(verifier, false, mac, delta); ok {
		t.Fatal("forged opening accepted")
	}
}

func TestMulPublicCollapsesOnFalse(t *testing.T) {
	rng := testRNG(t)
	key, _ := rng.Label()
	b := NewVerifierBit(key)

	if got := MulPublic(b, true); !got.Key.Equal(key) {
		t.Fatal("mulpublic(true) must be the identity")
	}
	if got := MulPublic(b, false); !got.Key.Equal(ot.Label{}) {
		t.Fatal("mulpublic(false) must zero the key")
	}
}

// seedExtension runs one otext seed phase plus a single batch Expand,
// exactly as the triple-generation round of the protocol FSM will.
func seedExtension(t *testing.T, delta ot.Label, x []bool) ([]ot.Label, []ot.Label) {
	t.Helper()
	verifierRNG := testRNG(t)
	holderRNG := testRNG(t)

	pairs, receiverSeeds, err := otext.NewReceiverSeedPairs(holderRNG)
	if err != nil {
		t.Fatal(err)
	}
	senderState, msg1, err := ot.BaseOTSenderOffer(otext.K, holderRNG)
	if err != nil {
		t.Fatal(err)
	}
	receiverState, msg2, err := ot.BaseOTReceiverChoose(msg1, otext.DeltaChoices(delta), verifierRNG)
	if err != nil {
		t.Fatal(err)
	}
	msg3, err := ot.BaseOTSenderRespond(senderState, msg2, pairs)
	if err != nil {
		t.Fatal(err)
	}
	chosen, err := ot.BaseOTReceiverFinish(receiverState, msg3)
	if err != nil {
		t.Fatal(err)
	}
	senderSeeds, err := otext.NewSenderSeeds(chosen, delta)
	if err != nil {
		t.Fatal(err)
	}

	u, _, macs, err := receiverSeeds.ExpandRequest(x)
	if err != nil {
		t.Fatal(err)
	}
	keys, err := senderSeeds.ExpandRespond(len(x), u)
	if err != nil {
		t.Fatal(err)
	}
	return macs, keys
}

func TestTripleSacrificeAcceptsHonestPair(t *testing.T) {
	rng := testRNG(t)
	delta, _ := rng.Delta()

	a, b, c, x, err := GenerateRawBits(rng, 2)
	if err != nil {
		t.Fatal(err)
	}
	macs, keys := seedExtension(t, delta, x)

	holder := WrapHolderTriples(a, b, c, macs)
	verifier := WrapVerifierTriples(2, keys)

	real, check := holder[0], holder[1]
	realV, checkV := verifier[0], verifier[1]

	dBit := real.D(check)
	eBit := real.E(check)
	d, e := a[0] != a[1], b[0] != b[1]

	if _, ok := VerifyOpen(realV.D(checkV), d, dBit.Mac, delta); !ok {
		t.Fatal("honest d-opening rejected")
	}
	if _, ok := VerifyOpen(realV.E(checkV), e, eBit.Mac, delta); !ok {
		t.Fatal("honest e-opening rejected")
	}

	zeroHolder := ZeroCheck(real, check, d, e, delta)
	zeroVerifier := ZeroCheck(realV, checkV, d, e, delta)

	if !SacrificeVerify(zeroVerifier, zeroHolder.Mac, delta) {
		t.Fatal("honest sacrifice rejected")
	}
}

func TestTripleSacrificeRejectsForgedTriple(t *testing.T) {
	rng := testRNG(t)
	delta, _ := rng.Delta()

	a, b, c, _, err := GenerateRawBits(rng, 2)
	if err != nil {
		t.Fatal(err)
	}
	// The evaluator cheats before running the OT extension: c[0] is
	// set to an inconsistent value, so the mac it obtains faithfully
	// authenticates c[0] = a[0] & b[0] == false.
	c[0] = !c[0]
	x := append(append(append([]bool{}, a...), b...), c...)
	macs, keys := seedExtension(t, delta, x)

	holder := WrapHolderTriples(a, b, c, macs)
	verifier := WrapVerifierTriples(2, keys)

	real, check := holder[0], holder[1]
	realV, checkV := verifier[0], verifier[1]

	d, e := a[0] != a[1], b[0] != b[1]
	zeroHolder := ZeroCheck(real, check, d, e, delta)
	zeroVerifier := ZeroCheck(realV, checkV, d, e, delta)

	if SacrificeVerify(zeroVerifier, zeroHolder.Mac, delta) {
		t.Fatal("sacrifice accepted a forged triple")
	}
}
