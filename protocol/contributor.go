//
// contributor.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"io"

	"github.com/wrk17/mpcfsm/circuit"
	"github.com/wrk17/mpcfsm/ot"
	"github.com/wrk17/mpcfsm/otext"
	"github.com/wrk17/mpcfsm/share"
)

type contributorState int

const (
	cStart contributorState = iota
	cAwaitRound2
	cAwaitRound4
	cAwaitRound6
	cDone
)

// Contributor drives the garbler's half of the six-message FSM. It
// holds Δ, garbles the circuit, and plays verifier for every
// authenticated bit the Evaluator produces.
type Contributor struct {
	cfg     Config
	circ    *circuit.Circuit
	rng     *ot.RNG
	input   []bool
	peerPub ot.BaseOTMsg1

	state contributorState

	delta            ot.Label
	baseOT           *ot.BaseOTReceiverState
	nAND             int
	nEval            int
	round2Transcript []byte

	verifierTriples []share.Triple
	garbled         *circuit.Garbled
	trackB          []share.Bit
	commitOpening   []byte
}

// NewContributor constructs a Contributor for circ, given the
// Evaluator's long-term base-OT public key (out of band, reusable
// across sessions per BaseOTKey's doc comment) and the
// Contributor's own input bits.
func NewContributor(cfg Config, circ *circuit.Circuit, peerPub ot.BaseOTMsg1,
	input []bool, rng *ot.RNG) (*Contributor, error) {

	if err := circ.Validate(len(input), circ.Inputs[1].Size); err != nil {
		return nil, abort(CircuitInvalid, "%s", err)
	}
	if hasORGate(circ) {
		return nil, abort(CircuitInvalid,
			"authenticated-share cross-check does not support OR gates")
	}
	return &Contributor{
		cfg:     cfg,
		circ:    circ,
		rng:     rng,
		input:   append([]bool(nil), input...),
		peerPub: peerPub,
		nAND:    circ.ANDCount(),
		nEval:   circ.Inputs[1].Size,
	}, nil
}

func hasORGate(circ *circuit.Circuit) bool {
	for _, g := range circ.Gates {
		if g.Op == circuit.OR {
			return true
		}
	}
	return false
}

// Start produces the Contributor's first message (Round1). It must be
// called exactly once before any Step call.
func (c *Contributor) Start() (StepResult, error) {
	if c.state != cStart {
		err := abort(UnexpectedState, "contributor already started")
		return StepResult{Status: Aborted, Err: err}, err
	}
	delta, err := c.rng.Delta()
	if err != nil {
		return StepResult{}, err
	}
	c.delta = delta

	choices := otext.DeltaChoices(delta)
	state, msg2, err := ot.BaseOTReceiverChoose(c.peerPub, choices, c.rng)
	if err != nil {
		return StepResult{}, err
	}
	c.baseOT = state
	c.state = cAwaitRound2

	return StepResult{
		Status:   Continue,
		Outbound: &Message{Round: Round1, BaseOTChoice: msg2},
	}, nil
}

// Step advances the Contributor's FSM with an inbound message from the
// Evaluator.
func (c *Contributor) Step(in *Message) (StepResult, error) {
	switch c.state {
	case cAwaitRound2:
		return c.stepRound2(in)
	case cAwaitRound4:
		return c.stepRound4(in)
	case cAwaitRound6:
		return c.stepRound6(in)
	default:
		err := abort(UnexpectedState, "contributor: no message expected in state %d", c.state)
		return StepResult{Status: Aborted, Err: err}, err
	}
}

func (c *Contributor) fail(err *AbortError) (StepResult, error) {
	c.state = cDone
	return StepResult{Status: Aborted, Err: err}, err
}

func (c *Contributor) stepRound2(in *Message) (StepResult, error) {
	if in.Round != Round2 {
		return c.fail(abort(UnexpectedState, "expected round 2, got %s", in.Round))
	}

	chosen, err := ot.BaseOTReceiverFinish(c.baseOT, in.BaseOTResponse)
	if err != nil {
		return c.fail(abort(MalformedMessage, "base ot: %s", err))
	}
	seeds, err := otext.NewSenderSeeds(chosen, c.delta)
	if err != nil {
		return c.fail(abort(MalformedMessage, "%s", err))
	}
	keys, err := seeds.ExpandRespond(in.UCols, in.U)
	if err != nil {
		return c.fail(abort(MalformedMessage, "%s", err))
	}

	transcript := in.U.Transcript()
	c.round2Transcript = transcript
	challenge := otext.ConsistencyChallenge(transcript, in.UCols)
	if !otext.VerifyCombination(keys, challenge, c.delta, in.OpenedValue, in.OpenedMac) {
		return c.fail(abort(ConsistencyFailure, "ot extension batch failed consistency check"))
	}

	n := 2 * c.nAND
	tripleKeys := keys[:3*n]
	evalInputKeys := keys[3*n:]
	rawTriples := share.WrapVerifierTriples(n, tripleKeys)

	triples := make([]share.Triple, c.nAND)
	for g := 0; g < c.nAND; g++ {
		final, check := rawTriples[2*g], rawTriples[2*g+1]
		dBit := final.D(check)
		if _, ok := share.VerifyOpen(dBit, in.TripleD[g], in.TripleDMac[g], c.delta); !ok {
			return c.fail(abort(TripleCheckFailed, "triple %d: d mac check failed", g))
		}
		eBit := final.E(check)
		if _, ok := share.VerifyOpen(eBit, in.TripleE[g], in.TripleEMac[g], c.delta); !ok {
			return c.fail(abort(TripleCheckFailed, "triple %d: e mac check failed", g))
		}
		zero := share.ZeroCheck(final, check, in.TripleD[g], in.TripleE[g], c.delta)
		if !share.SacrificeVerify(zero, in.TripleZeroMac[g], c.delta) {
			return c.fail(abort(TripleCheckFailed, "triple %d: sacrifice check failed", g))
		}
		triples[g] = final
	}
	c.verifierTriples = triples

	garbled, err := c.circ.Garble(c.rng, nil)
	if err != nil {
		return StepResult{}, err
	}
	c.garbled = garbled

	n1 := len(c.input)
	labels := make([]ot.Label, n1)
	for i := 0; i < n1; i++ {
		labels[i] = circuit.LabelForBit(garbled.Inputs[i], c.input[i])
	}

	cipher := make([][2]ot.Label, c.nEval)
	for i := 0; i < c.nEval; i++ {
		wire := garbled.Inputs[n1+i]
		key := evalInputKeys[i]
		keyXorDelta := key
		keyXorDelta.Xor(c.delta)
		c0 := wire.L0
		c0.Xor(ot.InputDeliveryHash(key, uint64(i)))
		c1 := wire.L1
		c1.Xor(ot.InputDeliveryHash(keyXorDelta, uint64(i)))
		cipher[i] = [2]ot.Label{c0, c1}
	}

	c.trackB = make([]share.Bit, c.circ.NumWires)
	for i := 0; i < n1; i++ {
		c.trackB[i] = share.NewPublicBit(c.input[i], c.delta, share.Verifier)
	}
	for i := 0; i < c.nEval; i++ {
		c.trackB[n1+i] = share.NewVerifierBit(evalInputKeys[i])
	}

	opening := make([]byte, ot.OpeningSize)
	if _, err := io.ReadFull(c.rng, opening); err != nil {
		return StepResult{}, err
	}
	c.commitOpening = opening
	commitment := ot.Commit(opening, commitmentPreimage(garbled.Tables, labels, garbled.Outputs))

	c.state = cAwaitRound4
	return StepResult{
		Status: Continue,
		Outbound: &Message{
			Round:                Round3,
			Tables:               garbled.Tables,
			ContributorLabels:    labels,
			EvaluatorLabelCipher: cipher,
			ContributorBits:      append([]bool(nil), c.input...),
			OutputCommitment:     commitment,
		},
	}, nil
}

func (c *Contributor) stepRound4(in *Message) (StepResult, error) {
	if in.Round != Round4 {
		return c.fail(abort(UnexpectedState, "expected round 4, got %s", in.Round))
	}
	if len(in.TripleDE) != 2*c.nAND {
		return c.fail(abort(MalformedMessage,
			"expected %d beaver-opened bits, got %d", 2*c.nAND, len(in.TripleDE)))
	}

	var keys []ot.Label
	andIdx := 0
	for i := range c.circ.Gates {
		g := &c.circ.Gates[i]
		switch g.Op {
		case circuit.XOR, circuit.XNOR:
			c.trackB[g.Output] = c.trackB[g.Input0].Xor(c.trackB[g.Input1])
			if g.Op == circuit.XNOR {
				c.trackB[g.Output] = c.trackB[g.Output].KeyXorPublic(true, c.delta)
			}
		case circuit.INV:
			c.trackB[g.Output] = c.trackB[g.Input0].KeyXorPublic(true, c.delta)
		case circuit.AND:
			d, e := in.TripleDE[2*andIdx], in.TripleDE[2*andIdx+1]
			triple := c.verifierTriples[andIdx]
			dBit := c.trackB[g.Input0].Xor(triple.A)
			eBit := c.trackB[g.Input1].Xor(triple.B)
			keys = append(keys, dBit.Key, eBit.Key)
			c.trackB[g.Output] = triple.AndGate(d, e, c.delta)
			andIdx++
		default:
			return c.fail(abort(CircuitInvalid, "unsupported gate %s", g.Op))
		}
	}
	for _, w := range c.circ.OutputWires {
		keys = append(keys, c.trackB[w].Key)
	}

	// The Round4 batch's Fiat-Shamir challenge is derived from the
	// Round2 U matrix's transcript bytes, fixed before either party
	// could have known the Beaver openings it now covers, so a
	// cheating Evaluator cannot bias the challenge after deciding
	// which wire to lie about.
	challenge := otext.ConsistencyChallenge(c.round2Transcript, len(keys))
	if !otext.VerifyCombination(keys, challenge, c.delta, in.CombinedValue, in.CombinedMac) {
		return c.fail(abort(MacCheck, "beaver opening batch failed mac check"))
	}

	c.state = cAwaitRound6
	return StepResult{
		Status: Continue,
		Outbound: &Message{
			Round:         Round5,
			OutputLabels:  c.garbled.Outputs,
			CommitOpening: c.commitOpening,
		},
	}, nil
}

func (c *Contributor) stepRound6(in *Message) (StepResult, error) {
	if in.Round != Round6 {
		return c.fail(abort(UnexpectedState, "expected round 6, got %s", in.Round))
	}
	c.state = cDone
	return StepResult{Status: Done}, nil
}
