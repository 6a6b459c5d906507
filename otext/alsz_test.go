//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"crypto/rand"
	"testing"

	"github.com/wrk17/mpcfsm/ot"
)

func testRNG(t *testing.T) *ot.RNG {
	t.Helper()
	rng, err := ot.NewRNGFromEntropy(rand.Reader)
	if err != nil {
		t.Fatalf("NewRNGFromEntropy: %v", err)
	}
	return rng
}

// seedPhase runs the K base OTs that bootstrap one SenderSeeds and one
// ReceiverSeeds, mirroring round 1 of the protocol FSM.
func seedPhase(t *testing.T, delta ot.Label) (*SenderSeeds, *ReceiverSeeds) {
	t.Helper()
	verifierRNG := testRNG(t)
	holderRNG := testRNG(t)

	pairs, receiverSeeds, err := NewReceiverSeedPairs(holderRNG)
	if err != nil {
		t.Fatalf("NewReceiverSeedPairs: %v", err)
	}

	senderState, msg1, err := ot.BaseOTSenderOffer(K, holderRNG)
	if err != nil {
		t.Fatalf("BaseOTSenderOffer: %v", err)
	}
	receiverState, msg2, err := ot.BaseOTReceiverChoose(msg1, DeltaChoices(delta), verifierRNG)
	if err != nil {
		t.Fatalf("BaseOTReceiverChoose: %v", err)
	}
	msg3, err := ot.BaseOTSenderRespond(senderState, msg2, pairs)
	if err != nil {
		t.Fatalf("BaseOTSenderRespond: %v", err)
	}
	chosen, err := ot.BaseOTReceiverFinish(receiverState, msg3)
	if err != nil {
		t.Fatalf("BaseOTReceiverFinish: %v", err)
	}

	senderSeeds, err := NewSenderSeeds(chosen, delta)
	if err != nil {
		t.Fatalf("NewSenderSeeds: %v", err)
	}
	return senderSeeds, receiverSeeds
}

func TestExpandProducesAuthenticatedBits(t *testing.T) {
	rng := testRNG(t)
	delta, err := rng.Delta()
	if err != nil {
		t.Fatal(err)
	}

	senderSeeds, receiverSeeds := seedPhase(t, delta)

	x := []bool{true, false, true, true, false, false, true, false, true, true}
	u, values, macs, err := receiverSeeds.ExpandRequest(x)
	if err != nil {
		t.Fatalf("ExpandRequest: %v", err)
	}
	keys, err := senderSeeds.ExpandRespond(len(x), u)
	if err != nil {
		t.Fatalf("ExpandRespond: %v", err)
	}

	for j := range x {
		want := keys[j]
		if values[j] {
			want.Xor(delta)
		}
		if !want.Equal(macs[j]) {
			t.Fatalf("column %d: mac != key xor (value * delta)", j)
		}
	}
}

func TestConsistencyCheckAcceptsHonestBatch(t *testing.T) {
	rng := testRNG(t)
	delta, err := rng.Delta()
	if err != nil {
		t.Fatal(err)
	}
	senderSeeds, receiverSeeds := seedPhase(t, delta)

	x, err := rng.Bools(64)
	if err != nil {
		t.Fatal(err)
	}
	u, values, macs, err := receiverSeeds.ExpandRequest(x)
	if err != nil {
		t.Fatal(err)
	}
	keys, err := senderSeeds.ExpandRespond(len(x), u)
	if err != nil {
		t.Fatal(err)
	}

	challenge := ConsistencyChallenge(u.Transcript(), len(x))
	cv, cmac := OpenCombination(values, macs, challenge)
	if !VerifyCombination(keys, challenge, delta, cv, cmac) {
		t.Fatal("honest batch rejected by consistency check")
	}
}

func TestConsistencyCheckRejectsTamperedValue(t *testing.T) {
	rng := testRNG(t)
	delta, err := rng.Delta()
	if err != nil {
		t.Fatal(err)
	}
	senderSeeds, receiverSeeds := seedPhase(t, delta)

	x, err := rng.Bools(64)
	if err != nil {
		t.Fatal(err)
	}
	u, values, macs, err := receiverSeeds.ExpandRequest(x)
	if err != nil {
		t.Fatal(err)
	}
	keys, err := senderSeeds.ExpandRespond(len(x), u)
	if err != nil {
		t.Fatal(err)
	}

	challenge := ConsistencyChallenge(u.Transcript(), len(x))
	cv, cmac := OpenCombination(values, macs, challenge)
	cv = !cv // holder lies about the combined opening without updating its mac
	if VerifyCombination(keys, challenge, delta, cv, cmac) {
		t.Fatal("consistency check accepted a tampered value")
	}
}
