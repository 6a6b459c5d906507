//
// evaluator.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"github.com/wrk17/mpcfsm/circuit"
	"github.com/wrk17/mpcfsm/ot"
	"github.com/wrk17/mpcfsm/otext"
	"github.com/wrk17/mpcfsm/share"
)

type evaluatorState int

const (
	eAwaitRound1 evaluatorState = iota
	eAwaitRound3
	eAwaitRound5
	eDone
)

// Evaluator drives the evaluator's half of the six-message FSM. It
// never learns Δ; it evaluates the garbled circuit for its own result
// (Track A) and independently walks an authenticated-share copy of
// the same gate list (Track B) so the final output is cross-checked
// against two different failure modes: a malformed garbled table
// (caught by Track A/B disagreeing) and a forged AND-gate result
// (caught by the Round4 batched MAC check the Contributor performs
// before ever revealing Round5's output labels).
type Evaluator struct {
	cfg     Config
	circ    *circuit.Circuit
	rng     *ot.RNG
	input   []bool
	baseKey *BaseOTKey

	state evaluatorState

	nAND  int
	n1    int
	n2    int
	seeds *otext.ReceiverSeeds
	pairs [][2]ot.Label

	holderTriples    []share.Triple
	ownInputMacs     []ot.Label
	round2Transcript []byte

	wiresA       []ot.Label
	trackB       []share.Bit
	trackBOutput []bool

	outputCommitment  []byte
	tables            [][]ot.Label
	contributorLabels []ot.Label
}

// NewEvaluator constructs an Evaluator for circ, given its own
// long-term base-OT key and its own input bits.
func NewEvaluator(cfg Config, circ *circuit.Circuit, baseKey *BaseOTKey,
	input []bool, rng *ot.RNG) (*Evaluator, error) {

	if err := circ.Validate(circ.Inputs[0].Size, len(input)); err != nil {
		return nil, abort(CircuitInvalid, "%s", err)
	}
	if hasORGate(circ) {
		return nil, abort(CircuitInvalid,
			"authenticated-share cross-check does not support OR gates")
	}

	pairs, seeds, err := otext.NewReceiverSeedPairs(rng)
	if err != nil {
		return nil, err
	}

	return &Evaluator{
		cfg:     cfg,
		circ:    circ,
		rng:     rng,
		input:   append([]bool(nil), input...),
		baseKey: baseKey,
		nAND:    circ.ANDCount(),
		n1:      circ.Inputs[0].Size,
		n2:      len(input),
		seeds:   seeds,
		pairs:   pairs,
	}, nil
}

// Step advances the Evaluator's FSM with an inbound message from the
// Contributor.
func (e *Evaluator) Step(in *Message) (StepResult, error) {
	switch e.state {
	case eAwaitRound1:
		return e.stepRound1(in)
	case eAwaitRound3:
		return e.stepRound3(in)
	case eAwaitRound5:
		return e.stepRound5(in)
	default:
		err := abort(UnexpectedState, "evaluator: no message expected in state %d", e.state)
		return StepResult{Status: Aborted, Err: err}, err
	}
}

func (e *Evaluator) fail(err *AbortError) (StepResult, error) {
	e.state = eDone
	return StepResult{Status: Aborted, Err: err}, err
}

func (e *Evaluator) stepRound1(in *Message) (StepResult, error) {
	if in.Round != Round1 {
		return e.fail(abort(UnexpectedState, "expected round 1, got %s", in.Round))
	}

	msg3, err := ot.BaseOTSenderRespond(e.baseKey.state, in.BaseOTChoice, e.pairs)
	if err != nil {
		return e.fail(abort(MalformedMessage, "base ot: %s", err))
	}

	n := 2 * e.nAND
	a, b, c, x, err := share.GenerateRawBits(e.rng, n)
	if err != nil {
		return StepResult{}, err
	}
	x = append(x, e.input...)
	m := len(x)

	u, values, macs, err := e.seeds.ExpandRequest(x)
	if err != nil {
		return StepResult{}, err
	}
	e.round2Transcript = u.Transcript()

	challenge := otext.ConsistencyChallenge(e.round2Transcript, m)
	openedValue, openedMac := otext.OpenCombination(values, macs, challenge)

	rawTriples := share.WrapHolderTriples(a, b, c, macs[:3*n])
	e.ownInputMacs = macs[3*n:]

	triples := make([]share.Triple, e.nAND)
	tripleD := make([]bool, e.nAND)
	tripleDMac := make([]ot.Label, e.nAND)
	tripleE := make([]bool, e.nAND)
	tripleEMac := make([]ot.Label, e.nAND)
	tripleZeroMac := make([]ot.Label, e.nAND)
	for g := 0; g < e.nAND; g++ {
		final, check := rawTriples[2*g], rawTriples[2*g+1]
		dBit := final.D(check)
		eBit := final.E(check)
		zero := share.ZeroCheck(final, check, dBit.Value, eBit.Value, ot.Label{})

		triples[g] = final
		tripleD[g] = dBit.Value
		tripleDMac[g] = dBit.Mac
		tripleE[g] = eBit.Value
		tripleEMac[g] = eBit.Mac
		tripleZeroMac[g] = zero.Mac
	}
	e.holderTriples = triples

	e.trackB = make([]share.Bit, e.circ.NumWires)
	for i := 0; i < e.n2; i++ {
		e.trackB[e.n1+i] = share.NewHolderBit(e.input[i], e.ownInputMacs[i])
	}

	e.state = eAwaitRound3
	return StepResult{
		Status: Continue,
		Outbound: &Message{
			Round:          Round2,
			BaseOTResponse: msg3,
			U:              u,
			UCols:          m,
			OpenedValue:    openedValue,
			OpenedMac:      openedMac,
			TripleD:        tripleD,
			TripleDMac:     tripleDMac,
			TripleE:        tripleE,
			TripleEMac:     tripleEMac,
			TripleZeroMac:  tripleZeroMac,
		},
	}, nil
}

func (e *Evaluator) stepRound3(in *Message) (StepResult, error) {
	if in.Round != Round3 {
		return e.fail(abort(UnexpectedState, "expected round 3, got %s", in.Round))
	}
	if len(in.ContributorLabels) != e.n1 || len(in.EvaluatorLabelCipher) != e.n2 ||
		len(in.ContributorBits) != e.n1 {
		return e.fail(abort(MalformedMessage, "round 3: input arity mismatch"))
	}

	wiresA := make([]ot.Label, e.circ.NumWires)
	for i := 0; i < e.n1; i++ {
		wiresA[i] = in.ContributorLabels[i]
	}
	for i := 0; i < e.n2; i++ {
		row := in.EvaluatorLabelCipher[i]
		var bit int
		if e.input[i] {
			bit = 1
		}
		key := ot.InputDeliveryHash(e.ownInputMacs[i], uint64(i))
		label := row[bit]
		label.Xor(key)
		wiresA[e.n1+i] = label
	}

	if err := e.circ.Eval(wiresA, in.Tables); err != nil {
		return e.fail(abort(MalformedMessage, "circuit evaluation: %s", err))
	}
	e.wiresA = wiresA
	e.outputCommitment = in.OutputCommitment
	e.tables = in.Tables
	e.contributorLabels = in.ContributorLabels

	for i := 0; i < e.n1; i++ {
		e.trackB[i] = share.NewPublicBit(in.ContributorBits[i], ot.Label{}, share.Holder)
	}

	var openedBits []share.Bit
	tripleDE := make([]bool, 0, 2*e.nAND)
	andIdx := 0
	for i := range e.circ.Gates {
		g := &e.circ.Gates[i]
		switch g.Op {
		case circuit.XOR, circuit.XNOR:
			e.trackB[g.Output] = e.trackB[g.Input0].Xor(e.trackB[g.Input1])
			if g.Op == circuit.XNOR {
				e.trackB[g.Output] = e.trackB[g.Output].XorPublic(true)
			}
		case circuit.INV:
			e.trackB[g.Output] = e.trackB[g.Input0].XorPublic(true)
		case circuit.AND:
			triple := e.holderTriples[andIdx]
			dBit := e.trackB[g.Input0].Xor(triple.A)
			eBit := e.trackB[g.Input1].Xor(triple.B)
			openedBits = append(openedBits, dBit, eBit)
			tripleDE = append(tripleDE, dBit.Value, eBit.Value)
			e.trackB[g.Output] = triple.AndGate(dBit.Value, eBit.Value, ot.Label{})
			andIdx++
		default:
			return e.fail(abort(CircuitInvalid, "unsupported gate %s", g.Op))
		}
	}
	trackBOutput := make([]bool, len(e.circ.OutputWires))
	for i, w := range e.circ.OutputWires {
		openedBits = append(openedBits, e.trackB[w])
		trackBOutput[i] = e.trackB[w].Value
	}
	e.trackBOutput = trackBOutput

	values := make([]bool, len(openedBits))
	macs := make([]ot.Label, len(openedBits))
	for i, b := range openedBits {
		values[i] = b.Value
		macs[i] = b.Mac
	}
	challenge := otext.ConsistencyChallenge(e.round2Transcript, len(openedBits))
	combinedValue, combinedMac := otext.OpenCombination(values, macs, challenge)

	e.state = eAwaitRound5
	return StepResult{
		Status: Continue,
		Outbound: &Message{
			Round:         Round4,
			TripleDE:      tripleDE,
			CombinedValue: combinedValue,
			CombinedMac:   combinedMac,
		},
	}, nil
}

func (e *Evaluator) stepRound5(in *Message) (StepResult, error) {
	if in.Round != Round5 {
		return e.fail(abort(UnexpectedState, "expected round 5, got %s", in.Round))
	}
	preimage := commitmentPreimage(e.tables, e.contributorLabels, in.OutputLabels)
	if err := ot.Open(e.outputCommitment, in.CommitOpening, preimage); err != nil {
		return e.fail(abort(CommitmentCheck, "output commitment: %s", err))
	}
	decoded, err := e.circ.DecodeOutput(e.wiresA, in.OutputLabels)
	if err != nil {
		return e.fail(abort(MalformedMessage, "output decoding: %s", err))
	}
	for i, bit := range decoded {
		if bit != e.trackBOutput[i] {
			return e.fail(abort(CircuitInvalid,
				"output bit %d disagrees between garbled-circuit and authenticated-share tracks", i))
		}
	}

	e.state = eDone
	return StepResult{
		Status:   Done,
		Outbound: &Message{Round: Round6},
		Output:   decoded,
	}, nil
}
