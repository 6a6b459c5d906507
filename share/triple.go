//
// triple.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package share

import "github.com/wrk17/mpcfsm/ot"

// Triple is one Beaver AND triple (a, b, c = a & b), held either by
// the Evaluator as (Holder) raw values with MACs or by the Contributor
// as (Verifier) keys alone. Field-wise Xor/MulPublic dispatch on
// Role, so the same Triple-level combinators work for both sides.
type Triple struct {
	A, B, C Bit
}

// GenerateRawBits draws n Beaver triples' worth of raw bits: n
// multiplicand pairs plus their AND. x is the 3n-bit concatenation
// (a‖b‖c) ready to hand to otext.ReceiverSeeds.ExpandRequest.
func GenerateRawBits(rng *ot.RNG, n int) (a, b, c, x []bool, err error) {
	a, err = rng.Bools(n)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	b, err = rng.Bools(n)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	c = make([]bool, n)
	for i := range c {
		c[i] = a[i] && b[i]
	}
	x = make([]bool, 0, 3*n)
	x = append(x, a...)
	x = append(x, b...)
	x = append(x, c...)
	return a, b, c, x, nil
}

// WrapHolderTriples assembles n Triples from the Evaluator's raw bits
// and the MACs ExpandRequest returned for their 3n-bit concatenation.
func WrapHolderTriples(a, b, c []bool, macs []ot.Label) []Triple {
	n := len(a)
	out := make([]Triple, n)
	for i := 0; i < n; i++ {
		out[i] = Triple{
			A: NewHolderBit(a[i], macs[i]),
			B: NewHolderBit(b[i], macs[n+i]),
			C: NewHolderBit(c[i], macs[2*n+i]),
		}
	}
	return out
}

// WrapVerifierTriples assembles n Triples from the Contributor's keys
// for the same 3n-bit layout ExpandRespond returned.
func WrapVerifierTriples(n int, keys []ot.Label) []Triple {
	out := make([]Triple, n)
	for i := 0; i < n; i++ {
		out[i] = Triple{
			A: NewVerifierBit(keys[i]),
			B: NewVerifierBit(keys[n+i]),
			C: NewVerifierBit(keys[2*n+i]),
		}
	}
	return out
}

// MulPublic scales an authenticated bit by a publicly known constant:
// pub==true leaves it unchanged, pub==false collapses it to the
// authenticated zero bit (of the same role).
func MulPublic(b Bit, pub bool) Bit {
	if pub {
		return b
	}
	r := b
	r.Value = false
	r.Mac = ot.Label{}
	r.Key = ot.Label{}
	return r
}

// D returns the authenticated bit for a xor check.A, the first
// opening in the Beaver cut-and-choose sacrifice check.
func (t Triple) D(check Triple) Bit {
	return t.A.Xor(check.A)
}

// E returns the authenticated bit for b xor check.B, the second
// sacrifice opening.
func (t Triple) E(check Triple) Bit {
	return t.B.Xor(check.B)
}

// ZeroCheck computes the authenticated bit that must open to 0 for the
// sacrifice to pass: c ⊕ c' ⊕ (d·b') ⊕ (e·a') ⊕ (d·e), where d, e are
// the already-opened bits from D/E and ' marks the check triple. A
// cheating Evaluator whose c ≠ a&b produces a nonzero value here with
// overwhelming probability once d and e are fixed; a cheating
// Contributor cannot forge the matching MAC without knowing Δ's
// unauthenticated half.
func ZeroCheck(t, check Triple, d, e bool, delta ot.Label) Bit {
	z := t.C.Xor(check.C)
	z = z.Xor(MulPublic(check.B, d))
	z = z.Xor(MulPublic(check.A, e))
	z = z.XorPublic(d && e)
	z = z.KeyXorPublic(d && e, delta)
	return z
}

// AndGate computes the authenticated bit for d^e's AND-gate product
// x&y from an already-verified triple (a,b,c=a&b) and the publicly
// opened Beaver values d = x^a, e = y^b:
//
//	x&y = (d^a)&(e^b) = d&e ^ d&b ^ e&a ^ a&b
//
// so the result is c ^ (d·b) ^ (e·a) ^ (d&e), computed entirely with
// the authenticated-bit combinators so the same call works for both
// the Evaluator's (Holder) value+mac and the Contributor's (Verifier)
// key side; the verifier side needs delta to fold in the d&e public
// constant, the holder side ignores it.
func (t Triple) AndGate(d, e bool, delta ot.Label) Bit {
	z := t.C.Xor(MulPublic(t.B, d)).Xor(MulPublic(t.A, e))
	z = z.XorPublic(d && e)
	z = z.KeyXorPublic(d && e, delta)
	return z
}

// SacrificeVerify is the Contributor's final check on a sacrificed
// triple pair: it accepts iff the Evaluator's revealed zero-check MAC
// authenticates the value false. A rejection is the TripleCheckFailed
// abort condition.
func SacrificeVerify(verifierZero Bit, revealedMac ot.Label, delta ot.Label) bool {
	_, ok := VerifyOpen(verifierZero, false, revealedMac, delta)
	return ok
}
