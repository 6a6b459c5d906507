//
// helpers.go
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

// LabelForBit returns the wire label corresponding to the given bit.
func LabelForBit(wire ot.Wire, bit bool) ot.Label {
	if bit {
		return wire.L1
	}
	return wire.L0
}

// BitFromLabel resolves a concrete label back to the boolean value it
// represents on wire, used for output decoding once the Contributor
// has revealed both output wire labels (Round5).
func BitFromLabel(wire ot.Wire, label ot.Label) (bool, error) {
	switch {
	case label.Equal(wire.L0):
		return false, nil
	case label.Equal(wire.L1):
		return true, nil
	default:
		return false, fmt.Errorf("circuit: unknown label %s for wire %v", label, wire)
	}
}

// DecodeOutput resolves every output bit of the circuit given the
// evaluator's final wire labels and the Contributor's revealed output
// wire pairs, indexed by c.OutputWires.
func (c *Circuit) DecodeOutput(wires []ot.Label, outputPairs []ot.Wire) ([]bool, error) {
	out := make([]bool, len(c.OutputWires))
	for i, w := range c.OutputWires {
		bit, err := BitFromLabel(outputPairs[i], wires[w.ID()])
		if err != nil {
			return nil, fmt.Errorf("circuit: output bit %d: %w", i, err)
		}
		out[i] = bit
	}
	return out, nil
}
