// Copyright (c) 2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"

	"github.com/chainforge/chainforge/util/chainhash"
)

// TipInfo summarizes a candidate best-chain head for fork-choice
// comparisons.
type TipInfo struct {
	Hash   chainhash.Hash
	Height uint64
}

// ForkChoice selects the best-chain head among competing branches.
//
// BetterTip reports whether a is preferred over b as the head of the best
// chain. Implementations must be deterministic and define a strict total
// order over tips: for any two distinct tips exactly one of
// BetterTip(a, b) and BetterTip(b, a) is true. The chain calls BetterTip
// every time a block is committed, comparing the new tip against the
// current head, so comparisons should be cheap.
type ForkChoice interface {
	BetterTip(a, b *TipInfo) bool
}

// heightForkChoice is the default fork-choice policy. It prefers the
// higher tip and breaks height ties by the lexicographically smaller
// hash, which keeps head selection deterministic regardless of the order
// in which competing blocks arrive.
type heightForkChoice struct{}

// NewHeightForkChoice returns the default longest-chain fork-choice
// policy.
func NewHeightForkChoice() ForkChoice {
	return heightForkChoice{}
}

// BetterTip implements the ForkChoice interface.
func (heightForkChoice) BetterTip(a, b *TipInfo) bool {
	if a.Height != b.Height {
		return a.Height > b.Height
	}
	return bytes.Compare(a.Hash[:], b.Hash[:]) < 0
}
