//
// eval.go
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

// Eval evaluates the circuit given the actual label for every input
// wire and the garbled tables produced by Garble, filling wires with
// the actual label for every wire as it goes. wires must be
// pre-sized to c.NumWires with the input wires already populated.
//
// AND gates are evaluated with the half-gates formula matching
// garble.go's two-row construction; OR gates still use a classic
// four-row table lookup, since only AND gets the half-gates
// optimization.
func (c *Circuit) Eval(wires []ot.Label, tables [][]ot.Label) error {
	for i := range c.Gates {
		gate := &c.Gates[i]
		a := wires[gate.Input0.ID()]

		var output ot.Label
		switch gate.Op {
		case XOR, XNOR:
			// Free-XOR: the evaluator only ever XORs labels, never
			// plaintext bits, so XOR and XNOR are indistinguishable
			// here — which physical label means "true" was decided
			// once at garbling time and is resolved later by output
			// decoding, not by the evaluator.
			b := wires[gate.Input1.ID()]
			output = a
			output.Xor(b)

		case INV:
			output = a

		case AND:
			b := wires[gate.Input1.ID()]
			row := tables[i]
			if len(row) != 2 {
				return fmt.Errorf("circuit: gate %d: malformed AND table (%d rows)",
					i, len(row))
			}
			tg, te := row[0], row[1]
			j0, j1 := tweak0(i), tweak1(i)

			sa := a.S()
			wg := ot.GarbleHash(a, j0)
			if sa {
				wg.Xor(tg)
			}

			sb := b.S()
			we := ot.GarbleHash(b, j1)
			if sb {
				we.Xor(te)
				we.Xor(a)
			}

			output = wg
			output.Xor(we)

		case OR:
			b := wires[gate.Input1.ID()]
			row := tables[i]
			index := idx(a, b)
			if index >= len(row) {
				return fmt.Errorf("circuit: gate %d: corrupted table index %d",
					i, index)
			}
			output = decrypt(a, b, tweak0(i), row[index])

		default:
			return fmt.Errorf("circuit: invalid gate type %s", gate.Op)
		}

		wires[gate.Output.ID()] = output
	}
	return nil
}
