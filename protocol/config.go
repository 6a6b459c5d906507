//
// config.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package protocol

import "github.com/wrk17/mpcfsm/ot"

// Config holds the session-wide parameters both the Contributor and
// the Evaluator construct their FSM with. S is the statistical
// security parameter: the OT-extension consistency check and the
// triple-sacrifice check both fail to catch a cheater with
// probability at most 2^-S. Default 40.
type Config struct {
	S int
}

// DefaultConfig returns the session defaults.
func DefaultConfig() Config {
	return Config{S: 40}
}

// BaseOTKey is the Evaluator's long-term base-OT sender keypair,
// established once outside the six-message budget and shared as a
// public parameter, the same way the circuit itself is shared by
// reference. Reusing one sender key across sessions
// is sound for the Simplest-OT construction (the receiver's per-OT
// scalar still freshens every session's shared secret); it is what
// lets the Contributor's base-OT choice be the very first on-wire
// message instead of waiting on a fresh sender offer each session.
type BaseOTKey struct {
	state  *ot.BaseOTSenderState
	Public ot.BaseOTMsg1
}

// NewBaseOTKey draws the Evaluator's long-term base-OT sender keypair.
func NewBaseOTKey(rng *ot.RNG, k int) (*BaseOTKey, error) {
	state, msg1, err := ot.BaseOTSenderOffer(k, rng)
	if err != nil {
		return nil, err
	}
	return &BaseOTKey{state: state, Public: msg1}, nil
}
