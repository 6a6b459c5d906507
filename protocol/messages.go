//
// messages.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/wrk17/mpcfsm/ot"
	"github.com/wrk17/mpcfsm/otext"
)

// Round tags which of the six on-wire messages a Message carries.
// Odd rounds travel Contributor to Evaluator, even rounds travel
// Evaluator to Contributor.
type Round byte

const (
	// Round1 carries the Contributor's base-OT choice against the
	// Evaluator's long-term BaseOTKey.
	Round1 Round = iota + 1
	// Round2 carries the base-OT response together with the
	// Evaluator's entire OT-extension batch and its Fiat-Shamir
	// consistency opening and AND-triple sacrifice opening.
	Round2
	// Round3 carries the garbled tables, the Contributor's own active
	// input labels, the delayed-OT ciphertexts for the Evaluator's
	// input labels, the Contributor's input bits in the clear for the
	// parallel authenticated-share cross-check, and a commitment
	// binding the Contributor to the output-wire label pairs it will
	// reveal at Round5.
	Round3
	// Round4 carries the per-AND-gate Beaver openings and the single
	// batched linear-combination MAC check covering them and the
	// authenticated-share walk's output bits.
	Round4
	// Round5 carries the Contributor's output wire label pairs and the
	// opening for Round3's output commitment, sent only once Round4's
	// batched check has passed.
	Round5
	// Round6 is the Evaluator's closing acknowledgement; the Evaluator
	// itself reaches Done one step earlier; Round6 exists purely to
	// keep the Contributor's FSM symmetric and the six-message count
	// exact.
	Round6
)

func (r Round) String() string {
	return fmt.Sprintf("round %d", byte(r))
}

// Message is the single wire type exchanged by Contributor and
// Evaluator; exactly one of its field groups is populated, selected by
// Round. Binary layout follows circuit/marshal.go's convention: a
// small fixed header of uint32 lengths followed by flat data, with no
// self-describing type tags since Round already determines the shape.
type Message struct {
	Round Round

	// Round1
	BaseOTChoice ot.BaseOTMsg2

	// Round2
	BaseOTResponse ot.BaseOTMsg3
	U              otext.UMatrix
	UCols          int
	OpenedValue    bool
	OpenedMac      ot.Label
	TripleD        []bool
	TripleDMac     []ot.Label
	TripleE        []bool
	TripleEMac     []ot.Label
	TripleZeroMac  []ot.Label

	// Round3
	Tables               [][]ot.Label
	ContributorLabels    []ot.Label
	EvaluatorLabelCipher [][2]ot.Label
	ContributorBits      []bool
	OutputCommitment     []byte

	// Round4
	TripleDE      []bool
	CombinedValue bool
	CombinedMac   ot.Label

	// Round5
	OutputLabels  []ot.Wire
	CommitOpening []byte
}

func writeUint32(w io.Writer, v uint32) error {
	return binary.Write(w, binary.BigEndian, v)
}

func readUint32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func writeBool(w io.Writer, v bool) error {
	var b byte
	if v {
		b = 1
	}
	_, err := w.Write([]byte{b})
	return err
}

func readBool(r io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}

func writeBools(w io.Writer, bs []bool) error {
	if err := writeUint32(w, uint32(len(bs))); err != nil {
		return err
	}
	for _, b := range bs {
		if err := writeBool(w, b); err != nil {
			return err
		}
	}
	return nil
}

func readBools(r io.Reader) ([]bool, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make([]bool, n)
	for i := range out {
		b, err := readBool(r)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func writeLabel(w io.Writer, l ot.Label) error {
	var buf ot.LabelData
	l.GetData(&buf)
	_, err := w.Write(buf[:])
	return err
}

func readLabel(r io.Reader) (ot.Label, error) {
	var buf ot.LabelData
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return ot.Label{}, err
	}
	var l ot.Label
	l.SetData(&buf)
	return l, nil
}

func writeLabels(w io.Writer, ls []ot.Label) error {
	if err := writeUint32(w, uint32(len(ls))); err != nil {
		return err
	}
	for _, l := range ls {
		if err := writeLabel(w, l); err != nil {
			return err
		}
	}
	return nil
}

func readLabels(r io.Reader) ([]ot.Label, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make([]ot.Label, n)
	for i := range out {
		l, err := readLabel(r)
		if err != nil {
			return nil, err
		}
		out[i] = l
	}
	return out, nil
}

func writeWire(w io.Writer, wire ot.Wire) error {
	if err := writeLabel(w, wire.L0); err != nil {
		return err
	}
	return writeLabel(w, wire.L1)
}

func readWire(r io.Reader) (ot.Wire, error) {
	l0, err := readLabel(r)
	if err != nil {
		return ot.Wire{}, err
	}
	l1, err := readLabel(r)
	if err != nil {
		return ot.Wire{}, err
	}
	return ot.Wire{L0: l0, L1: l1}, nil
}

func writeWires(w io.Writer, ws []ot.Wire) error {
	if err := writeUint32(w, uint32(len(ws))); err != nil {
		return err
	}
	for _, wire := range ws {
		if err := writeWire(w, wire); err != nil {
			return err
		}
	}
	return nil
}

func readWires(r io.Reader) ([]ot.Wire, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make([]ot.Wire, n)
	for i := range out {
		wire, err := readWire(r)
		if err != nil {
			return nil, err
		}
		out[i] = wire
	}
	return out, nil
}

func writeBytesField(w io.Writer, b []byte) error {
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytesField(r io.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeTables(w io.Writer, tables [][]ot.Label) error {
	if err := writeUint32(w, uint32(len(tables))); err != nil {
		return err
	}
	for _, rows := range tables {
		if err := writeLabels(w, rows); err != nil {
			return err
		}
	}
	return nil
}

func readTables(r io.Reader) ([][]ot.Label, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make([][]ot.Label, n)
	for i := range out {
		rows, err := readLabels(r)
		if err != nil {
			return nil, err
		}
		out[i] = rows
	}
	return out, nil
}

func writeLabelPairs(w io.Writer, pairs [][2]ot.Label) error {
	if err := writeUint32(w, uint32(len(pairs))); err != nil {
		return err
	}
	for _, p := range pairs {
		if err := writeLabel(w, p[0]); err != nil {
			return err
		}
		if err := writeLabel(w, p[1]); err != nil {
			return err
		}
	}
	return nil
}

func readLabelPairs(r io.Reader) ([][2]ot.Label, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make([][2]ot.Label, n)
	for i := range out {
		l0, err := readLabel(r)
		if err != nil {
			return nil, err
		}
		l1, err := readLabel(r)
		if err != nil {
			return nil, err
		}
		out[i] = [2]ot.Label{l0, l1}
	}
	return out, nil
}

func writeByteMatrix(w io.Writer, rowBytes int, rows [otext.K][]byte) error {
	if err := writeUint32(w, uint32(rowBytes)); err != nil {
		return err
	}
	for i := 0; i < otext.K; i++ {
		if _, err := w.Write(rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func readByteMatrix(r io.Reader) (otext.UMatrix, error) {
	rowBytes, err := readUint32(r)
	if err != nil {
		return otext.UMatrix{}, err
	}
	u := otext.UMatrix{RowBytes: int(rowBytes)}
	for i := 0; i < otext.K; i++ {
		row := make([]byte, rowBytes)
		if _, err := io.ReadFull(r, row); err != nil {
			return otext.UMatrix{}, err
		}
		u.Rows[i] = row
	}
	return u, nil
}

// commitmentPreimage serializes exactly what Round3's OutputCommitment
// binds the Contributor to: the garbled tables and the Contributor's
// own active input labels it reveals immediately at Round3, plus the
// output wire label pairs it withholds until Round5. Both parties call
// this with the same inputs, so it must stay a pure function of its
// arguments and use the same field order Marshal does.
func commitmentPreimage(tables [][]ot.Label, contributorLabels []ot.Label, outputs []ot.Wire) []byte {
	var buf bytes.Buffer
	writeTables(&buf, tables)
	writeLabels(&buf, contributorLabels)
	writeWires(&buf, outputs)
	return buf.Bytes()
}

// Marshal encodes m in the wire format exchanged by Contributor and
// Evaluator. Only the fields relevant to m.Round are written.
func (m *Message) Marshal(out io.Writer) error {
	if _, err := out.Write([]byte{byte(m.Round)}); err != nil {
		return err
	}
	switch m.Round {
	case Round1:
		if err := writeUint32(out, uint32(len(m.BaseOTChoice.B))); err != nil {
			return err
		}
		for _, b := range m.BaseOTChoice.B {
			if err := writeBytesField(out, b); err != nil {
				return err
			}
		}
	case Round2:
		if err := writeUint32(out, uint32(len(m.BaseOTResponse.E0))); err != nil {
			return err
		}
		for i := range m.BaseOTResponse.E0 {
			if _, err := out.Write(m.BaseOTResponse.E0[i][:]); err != nil {
				return err
			}
			if _, err := out.Write(m.BaseOTResponse.E1[i][:]); err != nil {
				return err
			}
		}
		if err := writeByteMatrix(out, m.U.RowBytes, m.U.Rows); err != nil {
			return err
		}
		if err := writeUint32(out, uint32(m.UCols)); err != nil {
			return err
		}
		if err := writeBool(out, m.OpenedValue); err != nil {
			return err
		}
		if err := writeLabel(out, m.OpenedMac); err != nil {
			return err
		}
		if err := writeBools(out, m.TripleD); err != nil {
			return err
		}
		if err := writeLabels(out, m.TripleDMac); err != nil {
			return err
		}
		if err := writeBools(out, m.TripleE); err != nil {
			return err
		}
		if err := writeLabels(out, m.TripleEMac); err != nil {
			return err
		}
		if err := writeLabels(out, m.TripleZeroMac); err != nil {
			return err
		}
	case Round3:
		if err := writeTables(out, m.Tables); err != nil {
			return err
		}
		if err := writeLabels(out, m.ContributorLabels); err != nil {
			return err
		}
		if err := writeLabelPairs(out, m.EvaluatorLabelCipher); err != nil {
			return err
		}
		if err := writeBools(out, m.ContributorBits); err != nil {
			return err
		}
		if err := writeBytesField(out, m.OutputCommitment); err != nil {
			return err
		}
	case Round4:
		if err := writeBools(out, m.TripleDE); err != nil {
			return err
		}
		if err := writeBool(out, m.CombinedValue); err != nil {
			return err
		}
		if err := writeLabel(out, m.CombinedMac); err != nil {
			return err
		}
	case Round5:
		if err := writeWires(out, m.OutputLabels); err != nil {
			return err
		}
		if err := writeBytesField(out, m.CommitOpening); err != nil {
			return err
		}
	case Round6:
		// No payload.
	default:
		return fmt.Errorf("protocol: unknown round %d", m.Round)
	}
	return nil
}

// UnmarshalMessage decodes a Message previously written by Marshal.
func UnmarshalMessage(in io.Reader) (*Message, error) {
	var rb [1]byte
	if _, err := io.ReadFull(in, rb[:]); err != nil {
		return nil, fmt.Errorf("protocol: reading round: %w", err)
	}
	m := &Message{Round: Round(rb[0])}

	switch m.Round {
	case Round1:
		n, err := readUint32(in)
		if err != nil {
			return nil, err
		}
		m.BaseOTChoice.B = make([][]byte, n)
		for i := range m.BaseOTChoice.B {
			b, err := readBytesField(in)
			if err != nil {
				return nil, err
			}
			m.BaseOTChoice.B[i] = b
		}
	case Round2:
		n, err := readUint32(in)
		if err != nil {
			return nil, err
		}
		m.BaseOTResponse.E0 = make([]ot.LabelData, n)
		m.BaseOTResponse.E1 = make([]ot.LabelData, n)
		for i := 0; i < int(n); i++ {
			if _, err := io.ReadFull(in, m.BaseOTResponse.E0[i][:]); err != nil {
				return nil, err
			}
			if _, err := io.ReadFull(in, m.BaseOTResponse.E1[i][:]); err != nil {
				return nil, err
			}
		}
		u, err := readByteMatrix(in)
		if err != nil {
			return nil, err
		}
		m.U = u
		cols, err := readUint32(in)
		if err != nil {
			return nil, err
		}
		m.UCols = int(cols)
		v, err := readBool(in)
		if err != nil {
			return nil, err
		}
		m.OpenedValue = v
		mac, err := readLabel(in)
		if err != nil {
			return nil, err
		}
		m.OpenedMac = mac
		if m.TripleD, err = readBools(in); err != nil {
			return nil, err
		}
		if m.TripleDMac, err = readLabels(in); err != nil {
			return nil, err
		}
		if m.TripleE, err = readBools(in); err != nil {
			return nil, err
		}
		if m.TripleEMac, err = readLabels(in); err != nil {
			return nil, err
		}
		if m.TripleZeroMac, err = readLabels(in); err != nil {
			return nil, err
		}
	case Round3:
		var err error
		if m.Tables, err = readTables(in); err != nil {
			return nil, err
		}
		if m.ContributorLabels, err = readLabels(in); err != nil {
			return nil, err
		}
		if m.EvaluatorLabelCipher, err = readLabelPairs(in); err != nil {
			return nil, err
		}
		if m.ContributorBits, err = readBools(in); err != nil {
			return nil, err
		}
		if m.OutputCommitment, err = readBytesField(in); err != nil {
			return nil, err
		}
	case Round4:
		var err error
		if m.TripleDE, err = readBools(in); err != nil {
			return nil, err
		}
		if m.CombinedValue, err = readBool(in); err != nil {
			return nil, err
		}
		if m.CombinedMac, err = readLabel(in); err != nil {
			return nil, err
		}
	case Round5:
		var err error
		if m.OutputLabels, err = readWires(in); err != nil {
			return nil, err
		}
		if m.CommitOpening, err = readBytesField(in); err != nil {
			return nil, err
		}
	case Round6:
		// No payload.
	default:
		return nil, fmt.Errorf("protocol: unknown round %d", m.Round)
	}
	return m, nil
}
