//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"bytes"
	"crypto/rand"
	"math/big"
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

// evalAll is a single-process helper that garbles a circuit, picks
// the actual labels for the given input bits directly (bypassing OT,
// which is package protocol's concern), evaluates, and decodes the
// output. Used to test circuit semantics in isolation.
func evalAll(t *testing.T, c *Circuit, aBits, bBits []bool) []bool {
	t.Helper()
	rng := testRNG(t)

	g, err := c.Garble(rng, nil)
	if err != nil {
		t.Fatalf("Garble: %v", err)
	}

	wires := make([]ot.Label, c.NumWires)
	n := len(aBits)
	for i := 0; i < n; i++ {
		wires[i] = LabelForBit(g.Inputs[i], aBits[i])
	}
	for i := 0; i < len(bBits); i++ {
		wires[n+i] = LabelForBit(g.Inputs[n+i], bBits[i])
	}

	if err := c.Eval(wires, g.Tables); err != nil {
		t.Fatalf("Eval: %v", err)
	}

	out, err := c.DecodeOutput(wires, g.Outputs)
	if err != nil {
		t.Fatalf("DecodeOutput: %v", err)
	}
	return out
}

func bitsOf(v uint64, n int) []bool {
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = (v>>uint(i))&1 == 1
	}
	return out
}

func valueOf(bits []bool) uint64 {
	var v uint64
	for i, b := range bits {
		if b {
			v |= 1 << uint(i)
		}
	}
	return v
}

func TestSingleANDGate(t *testing.T) {
	c := &Circuit{
		NumGates: 1,
		NumWires: 3,
		Inputs: IO{
			{Name: "a", Size: 1},
			{Name: "b", Size: 1},
		},
		Outputs:     IO{{Name: "c", Size: 1}},
		OutputWires: []Wire{2},
		Gates: []Gate{
			{Input0: 0, Input1: 1, Output: 2, Op: AND},
		},
	}

	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			av, bv := a == 1, b == 1
			out := evalAll(t, c, []bool{av}, []bool{bv})
			want := av && bv
			if out[0] != want {
				t.Fatalf("AND(%v,%v) = %v, want %v", av, bv, out[0], want)
			}
		}
	}
}

func TestSingleXORGate(t *testing.T) {
	c := &Circuit{
		NumGates: 1,
		NumWires: 3,
		Inputs: IO{
			{Name: "a", Size: 1},
			{Name: "b", Size: 1},
		},
		Outputs:     IO{{Name: "c", Size: 1}},
		OutputWires: []Wire{2},
		Gates: []Gate{
			{Input0: 0, Input1: 1, Output: 2, Op: XOR},
		},
	}

	rng := testRNG(t)
	g, err := c.Garble(rng, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Tables[0]) != 0 {
		t.Fatalf("XOR gate must garble to an empty (free) table, got %d rows",
			len(g.Tables[0]))
	}

	out := evalAll(t, c, []bool{true}, []bool{false})
	if !out[0] {
		t.Fatal("XOR(1,0) must be 1")
	}
}

func TestFreeXORLabelDuality(t *testing.T) {
	rng := testRNG(t)
	delta, _ := rng.Delta()
	a0, _ := rng.Label()
	a1 := a0
	a1.Xor(delta)
	wireA := ot.Wire{L0: a0, L1: a1}

	b0, _ := rng.Label()
	b1 := b0
	b1.Xor(delta)
	wireB := ot.Wire{L0: b0, L1: b1}

	xored := wireA.Xor(wireB)
	check := xored.L1
	check.Xor(delta)
	if !check.Equal(xored.L0) {
		t.Fatal("free-XOR output wire does not preserve the L1 = L0 xor delta invariant")
	}
}

func TestINVIsLabelSwap(t *testing.T) {
	c := &Circuit{
		NumGates:    1,
		NumWires:    2,
		Inputs:      IO{{Name: "a", Size: 1}, {Name: "b", Size: 0}},
		Outputs:     IO{{Name: "c", Size: 1}},
		OutputWires: []Wire{1},
		Gates: []Gate{
			{Input0: 0, Output: 1, Op: INV},
		},
	}
	rng := testRNG(t)
	g, err := c.Garble(rng, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Tables[0]) != 0 {
		t.Fatal("INV must garble to an empty (free) table")
	}

	for _, av := range []bool{false, true} {
		out := evalAll(t, c, []bool{av}, nil)
		if out[0] != !av {
			t.Fatalf("INV(%v) = %v, want %v", av, out[0], !av)
		}
	}
}

func TestAdderCorrectness(t *testing.T) {
	c := NewAdder(8)
	if err := c.Validate(8, 8); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	out := evalAll(t, c, bitsOf(110, 8), bitsOf(57, 8))
	got := valueOf(out)
	if got != 167 {
		t.Fatalf("110 + 57 = %d, want 167", got)
	}
}

func TestAdderExhaustive4Bit(t *testing.T) {
	c := NewAdder(4)
	for a := uint64(0); a < 16; a++ {
		for b := uint64(0); b < 16; b++ {
			out := evalAll(t, c, bitsOf(a, 4), bitsOf(b, 4))
			got := valueOf(out)
			want := (a + b) % 16
			if got != want {
				t.Fatalf("%d + %d = %d, want %d", a, b, got, want)
			}
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	c := NewAdder(4)
	var buf bytes.Buffer
	if err := c.Marshal(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.NumGates != c.NumGates || got.NumWires != c.NumWires {
		t.Fatal("round trip changed gate/wire counts")
	}
	if len(got.Gates) != len(c.Gates) {
		t.Fatal("round trip changed gate count")
	}
	for i := range c.Gates {
		if got.Gates[i] != c.Gates[i] {
			t.Fatalf("gate %d changed across round trip", i)
		}
	}
	if len(got.OutputWires) != len(c.OutputWires) {
		t.Fatalf("round trip changed output wire count: got %d, want %d",
			len(got.OutputWires), len(c.OutputWires))
	}
	for i := range c.OutputWires {
		if got.OutputWires[i] != c.OutputWires[i] {
			t.Fatalf("output wire %d changed across round trip: got %v, want %v",
				i, got.OutputWires[i], c.OutputWires[i])
		}
	}
}

func TestIOSplit(t *testing.T) {
	io := IO{{Name: "a", Size: 4}, {Name: "b", Size: 4}}
	v := big.NewInt(0xa5)
	parts := io.Split(v)
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[0].Int64() != 0x5 || parts[1].Int64() != 0xa {
		t.Fatalf("split mismatch: got %v, %v", parts[0], parts[1])
	}
}
