//
// bit.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package share implements the authenticated-bit algebra and Beaver
// AND-triple generation that sit between OT extension (package otext)
// and circuit evaluation (package circuit). An authenticated bit [b]
// is held by one party as (value, mac) and verified by the other as a
// key, with mac == key xor (value ? delta : 0); this is the one-sided
// instantiation of WRK17's authenticated sharing, where the Contributor
// always plays verifier (it already owns Δ for garbling) and the
// Evaluator always plays holder. The XOR algebra below follows the same
// XOR-share combinator shape used by plain GMW sharing, adapted from
// plain XOR-shares to the MAC-carrying authenticated variant.
package share

import "github.com/wrk17/mpcfsm/ot"

// Role tags which half of an authenticated bit a Bit value holds.
type Role int

const (
	// Holder knows the bit's Value and its Mac.
	Holder Role = iota
	// Verifier knows the bit's Key.
	Verifier
)

func (r Role) String() string {
	if r == Holder {
		return "holder"
	}
	return "verifier"
}

// Bit is one party's local view of an authenticated bit [b]. Value
// and Mac are meaningful only when Role == Holder; Key is meaningful
// only when Role == Verifier.
type Bit struct {
	Role  Role
	Value bool
	Mac   ot.Label
	Key   ot.Label
}

// NewHolderBit wraps a (value, mac) pair produced by otext.ExpandRequest.
func NewHolderBit(value bool, mac ot.Label) Bit {
	return Bit{Role: Holder, Value: value, Mac: mac}
}

// NewVerifierBit wraps a key produced by otext.ExpandRespond.
func NewVerifierBit(key ot.Label) Bit {
	return Bit{Role: Verifier, Key: key}
}

// NewPublicBit wraps a value both parties already know with certainty
// (the Contributor's own input bits, or an opened Beaver d/e once its
// mac has been checked) into the same Bit algebra as a genuine
// authenticated bit, so circuit-walking code in package protocol
// never needs to special-case public wires. Holder's Mac and
// Verifier's Key are fixed at 0/value?delta:0 respectively, which
// satisfies mac == key xor (value ? delta : 0) unconditionally (0 ==
// (value?delta:0) xor value*delta for both values of value), so a
// public bit combines correctly with real authenticated bits under
// Xor/XorPublic/KeyXorPublic without ever touching delta on the
// holder side, which never learns it.
func NewPublicBit(value bool, delta ot.Label, role Role) Bit {
	if role == Holder {
		return Bit{Role: Holder, Value: value}
	}
	b := Bit{Role: Verifier}
	if value {
		b.Key = delta
	}
	return b
}

// Xor combines two authenticated bits of the same role into the
// authenticated bit for their XOR, entirely locally: MACs and keys
// are additively homomorphic under the shared Δ, so no interaction is
// needed for a free XOR of shares, mirroring free-XOR at the label
// level.
func (b Bit) Xor(o Bit) Bit {
	r := b
	switch b.Role {
	case Holder:
		r.Value = b.Value != o.Value
		r.Mac.Xor(o.Mac)
	case Verifier:
		r.Key.Xor(o.Key)
	}
	return r
}

// XorPublic XORs a holder's share with a publicly known constant,
// leaving its MAC unchanged; the verifier keeps the invariant by
// shifting its key with KeyXorPublic.
func (b Bit) XorPublic(pub bool) Bit {
	if b.Role != Holder {
		return b
	}
	r := b
	r.Value = b.Value != pub
	return r
}

// KeyXorPublic is the verifier-side counterpart of XorPublic: when the
// holder's value is publicly shifted by pub, the verifier must shift
// its key by pub*Δ to keep mac == key xor (value*Δ) invariant.
func (b Bit) KeyXorPublic(pub bool, delta ot.Label) Bit {
	if b.Role != Verifier || !pub {
		return b
	}
	r := b
	r.Key.Xor(delta)
	return r
}

// Opened is the plaintext result of revealing an authenticated bit:
// both parties learn Value once the holder's (Value, Mac) has been
// checked against the verifier's Key.
type Opened struct {
	Value bool
}

// VerifyOpen is the verifier's check on a holder's revealed (value,
// mac): it accepts iff mac == key xor (value ? delta : 0), returning
// the opened bit on success. A mismatch is the MacCheck abort
// condition.
func VerifyOpen(verifierKey Bit, value bool, mac ot.Label, delta ot.Label) (Opened, bool) {
	want := verifierKey.Key
	if value {
		want.Xor(delta)
	}
	if !want.Equal(mac) {
		return Opened{}, false
	}
	return Opened{Value: value}, true
}
