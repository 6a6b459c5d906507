//
// garble.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"

	"github.com/wrk17/mpcfsm/ot"
)

// idx returns the point-and-permute row index for a two-input gate's
// garbled table.
func idx(a, b ot.Label) int {
	var ret int
	if a.S() {
		ret |= 0x2
	}
	if b.S() {
		ret |= 0x1
	}
	return ret
}

func idxUnary(a ot.Label) int {
	if a.S() {
		return 1
	}
	return 0
}

func tweak0(id int) uint64 { return uint64(id) << 1 }
func tweak1(id int) uint64 { return uint64(id)<<1 | 1 }

// encrypt is the classic (non-half-gates) garbled row cipher, used by
// OR, which this package does not optimize with half-gates.
func encrypt(a, b, c ot.Label, tweak uint64) ot.Label {
	k := ot.GarbleHash2(a, b, tweak)
	k.Xor(c)
	return k
}

func decrypt(a, b ot.Label, tweak uint64, row ot.Label) ot.Label {
	k := ot.GarbleHash2(a, b, tweak)
	row.Xor(k)
	return row
}

func makeLabels(delta ot.Label, rng *ot.RNG) (ot.Wire, error) {
	l0, err := rng.Label()
	if err != nil {
		return ot.Wire{}, err
	}
	l1 := l0
	l1.Xor(delta)
	return ot.Wire{L0: l0, L1: l1}, nil
}

// Garbled is the output of garbling a circuit: the global offset, the
// labels assigned to every input wire, and the garbled table rows per
// gate (empty for XOR/XNOR/INV, which are free).
type Garbled struct {
	Delta   ot.Label
	Inputs  []ot.Wire
	Outputs []ot.Wire
	Tables  [][]ot.Label
}

// Garble garbles the circuit using a freshly drawn Δ from rng, with
// Δ's least-significant bit forced to 1 (free-XOR invariant).
//
// When emit is non-nil it receives each gate's rows as soon as they
// are computed. Garble always also keeps every table and returns them
// in Garbled.Tables, so memory grows with the whole circuit. Package
// protocol passes a nil emit and sends the complete Tables slice in
// its Round3 message.
func (c *Circuit) Garble(rng *ot.RNG, emit func(gate int, rows []ot.Label) error) (*Garbled, error) {
	delta, err := rng.Delta()
	if err != nil {
		return nil, err
	}

	wires := make([]ot.Wire, c.NumWires)
	for i := 0; i < c.Inputs.Size(); i++ {
		w, err := makeLabels(delta, rng)
		if err != nil {
			return nil, err
		}
		wires[i] = w
	}

	tables := make([][]ot.Label, c.NumGates)
	for i := range c.Gates {
		gate := &c.Gates[i]
		rows, err := gate.garble(wires, delta, i, rng)
		if err != nil {
			return nil, err
		}
		tables[i] = rows
		if emit != nil {
			if err := emit(i, rows); err != nil {
				return nil, err
			}
		}
	}

	outputs := make([]ot.Wire, len(c.OutputWires))
	for i, w := range c.OutputWires {
		outputs[i] = wires[w.ID()]
	}

	return &Garbled{
		Delta:   delta,
		Inputs:  wires[:c.Inputs.Size()],
		Outputs: outputs,
		Tables:  tables,
	}, nil
}

// garble garbles one gate given the wire labels assigned so far,
// writing its own output wire into wires and returning the gate's
// garbled table rows (nil for free gates).
func (g *Gate) garble(wires []ot.Wire, delta ot.Label, id int, rng *ot.RNG) ([]ot.Label, error) {
	a := wires[g.Input0.ID()]

	switch g.Op {
	case XOR, XNOR:
		b := wires[g.Input1.ID()]
		l0 := a.L0
		l0.Xor(b.L0)
		l1 := l0
		l1.Xor(delta)
		if g.Op == XOR {
			wires[g.Output.ID()] = ot.Wire{L0: l0, L1: l1}
		} else {
			wires[g.Output.ID()] = ot.Wire{L0: l1, L1: l0}
		}
		return nil, nil

	case INV:
		// Free: the output wire is the input wire with its two
		// labels swapped, so output.L1 = output.L0 xor delta still
		// holds.
		wires[g.Output.ID()] = ot.Wire{L0: a.L1, L1: a.L0}
		return nil, nil

	case AND:
		b := wires[g.Input1.ID()]
		pa := a.L0.S()
		pb := b.L0.S()

		j0, j1 := tweak0(id), tweak1(id)

		// First half gate: generator half, encodes a's signal.
		tg := ot.GarbleHash(a.L0, j0)
		tg.Xor(ot.GarbleHash(a.L1, j0))
		if pb {
			tg.Xor(delta)
		}
		wg0 := ot.GarbleHash(a.L0, j0)
		if pa {
			wg0.Xor(tg)
		}

		// Second half gate: evaluator half, encodes b's signal.
		te := ot.GarbleHash(b.L0, j1)
		te.Xor(ot.GarbleHash(b.L1, j1))
		te.Xor(a.L0)
		we0 := ot.GarbleHash(b.L0, j1)
		if pb {
			we0.Xor(te)
			we0.Xor(a.L0)
		}

		l0 := wg0
		l0.Xor(we0)
		l1 := l0
		l1.Xor(delta)

		wires[g.Output.ID()] = ot.Wire{L0: l0, L1: l1}
		return []ot.Label{tg, te}, nil

	case OR:
		// OR is not free; garble the classic four-row table with a
		// freshly drawn output wire.
		b := wires[g.Input1.ID()]
		c, err := makeLabels(delta, rng)
		if err != nil {
			return nil, err
		}
		wires[g.Output.ID()] = c

		t := tweak0(id)
		var table [4]ot.Label
		table[idx(a.L0, b.L0)] = encrypt(a.L0, b.L0, c.L0, t)
		table[idx(a.L0, b.L1)] = encrypt(a.L0, b.L1, c.L1, t)
		table[idx(a.L1, b.L0)] = encrypt(a.L1, b.L0, c.L1, t)
		table[idx(a.L1, b.L1)] = encrypt(a.L1, b.L1, c.L1, t)
		return table[:], nil

	default:
		return nil, fmt.Errorf("circuit: invalid gate type %s", g.Op)
	}
}
