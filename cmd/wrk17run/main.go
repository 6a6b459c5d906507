//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Command wrk17run drives one in-memory WRK17 session to completion
// and reports the six-message exchange and the resulting circuit
// statistics. It exercises the same Simulator the test suite uses,
// with the bit width and operand values taken from the command line
// instead of hardcoded into a test.
package main

import (
	"bytes"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/wrk17/mpcfsm/circuit"
	"github.com/wrk17/mpcfsm/ot"
	"github.com/wrk17/mpcfsm/protocol"
)

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

func main() {
	bits := flag.Int("bits", 32, "adder bit width")
	a := flag.Uint64("a", 0, "contributor's addend")
	b := flag.Uint64("b", 0, "evaluator's addend")
	verbose := flag.Bool("v", false, "print every on-wire message's round and byte size")
	flag.Parse()

	circ := circuit.NewAdder(*bits)

	rng, err := ot.NewRNGFromEntropy(rand.Reader)
	if err != nil {
		log.Fatalf("seeding rng: %s", err)
	}

	sim, err := protocol.NewSimulator(protocol.DefaultConfig(), circ,
		bitsOf(*a, *bits), bitsOf(*b, *bits), rng)
	if err != nil {
		log.Fatalf("constructing session: %s", err)
	}

	out, err := sim.Run()
	if err != nil {
		log.Fatalf("session aborted: %s", err)
	}

	circ.Tabulate(os.Stdout, fmt.Sprintf("adder(%d)", *bits))

	if *verbose {
		for _, m := range sim.Messages {
			var buf bytes.Buffer
			if err := m.Marshal(&buf); err != nil {
				log.Fatalf("encoding %s: %s", m.Round, err)
			}
			fmt.Printf("%s sent, %d bytes\n", m.Round, buf.Len())
		}
	}

	fmt.Printf("%d + %d = %d\n", *a, *b, valueOf(out))
}
