//
// stats.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"io"
	"strconv"

	"github.com/markkurossi/tabulate"
)

// TabulateRow appends this circuit's gate-count columns to row,
// matching the column layout Tabulate's header declares.
func (c *Circuit) TabulateRow(row *tabulate.Row) {
	stats := c.Stats()
	xor := stats[XOR]
	xnor := stats[XNOR]
	and := stats[AND]
	or := stats[OR]
	inv := stats[INV]

	row.Column(itoa(xor))
	row.Column(itoa(xnor))
	row.Column(itoa(and))
	row.Column(itoa(or))
	row.Column(itoa(inv))
	row.Column(itoa(c.NumGates))
	row.Column(itoa(xor + xnor))
	row.Column(itoa(and + or + inv))
	row.Column(itoa(c.NumWires))
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

// Tabulate prints a single-row, Github-flavored gate-count report for
// the circuit to out.
func (c *Circuit) Tabulate(out io.Writer, name string) {
	tab := tabulate.New(tabulate.Github)
	tab.Header("Circuit")
	tab.Header("XOR").SetAlign(tabulate.MR)
	tab.Header("XNOR").SetAlign(tabulate.MR)
	tab.Header("AND").SetAlign(tabulate.MR)
	tab.Header("OR").SetAlign(tabulate.MR)
	tab.Header("INV").SetAlign(tabulate.MR)
	tab.Header("Gates").SetAlign(tabulate.MR)
	tab.Header("xor").SetAlign(tabulate.MR)
	tab.Header("!xor").SetAlign(tabulate.MR)
	tab.Header("Wires").SetAlign(tabulate.MR)

	row := tab.Row()
	row.Column(name)
	c.TabulateRow(row)

	tab.Print(out)
}
