//
// adder.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

// NewAdder builds an n-bit ripple-carry adder circuit: Contributor
// input "a" and Evaluator input "b", each n bits wide, little-endian
// (bit 0 first), producing an n-bit sum with the final carry
// discarded. Circuits are built directly as Go values rather than
// parsed from any source language.
func NewAdder(bits int) *Circuit {
	var next Wire
	alloc := func() Wire {
		w := next
		next++
		return w
	}

	var gates []Gate

	a := make([]Wire, bits)
	b := make([]Wire, bits)
	for i := 0; i < bits; i++ {
		a[i] = alloc()
	}
	for i := 0; i < bits; i++ {
		b[i] = alloc()
	}

	t1 := make([]Wire, bits)      // a_i xor b_i
	carryIn := make([]Wire, bits) // carry into bit i; index 0 unused, bit 0 has no carry in.
	for i := 0; i < bits; i++ {
		t1[i] = alloc()
		gates = append(gates, Gate{Input0: a[i], Input1: b[i], Output: t1[i], Op: XOR})

		switch i {
		case 0:
			// No carry into the least significant bit.
		case 1:
			// carryIn[1] = a0 & b0; the generic carry term below would
			// otherwise need a carry-in-to-bit-0 that does not exist.
			andAB := alloc()
			gates = append(gates, Gate{Input0: a[0], Input1: b[0], Output: andAB, Op: AND})
			carryIn[1] = andAB
		default:
			andAB := alloc()
			gates = append(gates, Gate{Input0: a[i-1], Input1: b[i-1], Output: andAB, Op: AND})
			andCarry := alloc()
			gates = append(gates, Gate{Input0: carryIn[i-1], Input1: t1[i-1], Output: andCarry, Op: AND})
			// andAB and andCarry can never both be set (a carry can only
			// be generated by one term at a time), so XOR here is
			// equivalent to OR but keeps every gate AND/XOR/INV, which is
			// what the authenticated-share cross-check supports.
			carryOut := alloc()
			gates = append(gates, Gate{Input0: andAB, Input1: andCarry, Output: carryOut, Op: XOR})
			carryIn[i] = carryOut
		}
	}

	sum := make([]Wire, bits)
	sum[0] = t1[0]
	for i := 1; i < bits; i++ {
		sum[i] = alloc()
		gates = append(gates, Gate{Input0: t1[i], Input1: carryIn[i], Output: sum[i], Op: XOR})
	}

	return &Circuit{
		NumGates: len(gates),
		NumWires: int(next),
		Inputs: IO{
			{Name: "a", Type: "uint", Size: bits},
			{Name: "b", Type: "uint", Size: bits},
		},
		Outputs: IO{
			{Name: "sum", Type: "uint", Size: bits},
		},
		OutputWires: sum,
		Gates:       gates,
	}
}
