//
// simulator.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"bytes"
	"fmt"

	"github.com/wrk17/mpcfsm/circuit"
	"github.com/wrk17/mpcfsm/ot"
)

// Simulator drives a Contributor and an Evaluator against each other
// in memory, round-tripping every Message through Marshal/Unmarshal so
// a test exercising it also exercises the wire format. It is a direct
// call-response loop rather than a network transport, since the FSM
// never assumes I/O of its own.
type Simulator struct {
	Contributor *Contributor
	Evaluator   *Evaluator

	// Messages records every message exchanged, in send order, for
	// callers that want to inspect the six-message schedule or assert
	// the property that a seventh message is always rejected.
	Messages []*Message
}

// NewSimulator wires a Contributor and Evaluator for circ together.
// The Evaluator's base-OT key is drawn with a batch size of 128
// (ot.BaseOTSenderOffer's k, equal to otext.K for a single extension
// batch). Both parties draw from the one rng.
func NewSimulator(cfg Config, circ *circuit.Circuit, contributorInput, evaluatorInput []bool,
	rng *ot.RNG) (*Simulator, error) {

	baseKey, err := NewBaseOTKey(rng, 128)
	if err != nil {
		return nil, err
	}
	evaluator, err := NewEvaluator(cfg, circ, baseKey, evaluatorInput, rng)
	if err != nil {
		return nil, err
	}
	contributor, err := NewContributor(cfg, circ, baseKey.Public, contributorInput, rng)
	if err != nil {
		return nil, err
	}
	return &Simulator{Contributor: contributor, Evaluator: evaluator}, nil
}

func roundTrip(m *Message) (*Message, error) {
	var buf bytes.Buffer
	if err := m.Marshal(&buf); err != nil {
		return nil, err
	}
	return UnmarshalMessage(&buf)
}

// Run drives the full six-message exchange to completion, returning
// the Evaluator's decoded output bits.
func (s *Simulator) Run() ([]bool, error) {
	result, err := s.Contributor.Start()
	if err != nil {
		return nil, err
	}
	if result.Status != Continue || result.Outbound == nil {
		return nil, fmt.Errorf("protocol: contributor did not produce round 1")
	}

	msg := result.Outbound
	for {
		wire, err := roundTrip(msg)
		if err != nil {
			return nil, err
		}
		s.Messages = append(s.Messages, wire)

		var next StepResult
		if wire.Round%2 == 1 {
			next, err = s.Evaluator.Step(wire)
		} else {
			next, err = s.Contributor.Step(wire)
		}
		if err != nil {
			return nil, err
		}
		if next.Status == Aborted {
			return nil, next.Err
		}

		if next.Outbound != nil {
			msg = next.Outbound
			if next.Status == Done && wire.Round%2 == 1 {
				// Evaluator's closing Round6 still needs delivery to
				// the Contributor so its own FSM reaches Done too.
				wire2, err := roundTrip(msg)
				if err != nil {
					return nil, err
				}
				s.Messages = append(s.Messages, wire2)
				if _, err := s.Contributor.Step(wire2); err != nil {
					return nil, err
				}
				return next.Output, nil
			}
			continue
		}
		if next.Status == Done {
			return next.Output, nil
		}
		return nil, fmt.Errorf("protocol: stalled FSM with no outbound message and no output")
	}
}
