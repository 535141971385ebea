// Copyright (c) 2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"testing"

	"github.com/chainforge/chainforge/util/chainhash"
)

func TestHeightForkChoice(t *testing.T) {
	forkChoice := NewHeightForkChoice()

	higher := &TipInfo{Hash: chainhash.Hash{0xff}, Height: 2}
	lower := &TipInfo{Hash: chainhash.Hash{0x00}, Height: 1}
	if !forkChoice.BetterTip(higher, lower) {
		t.Error("higher tip not preferred over lower tip")
	}
	if forkChoice.BetterTip(lower, higher) {
		t.Error("lower tip preferred over higher tip")
	}

	// Height ties break toward the lexicographically smaller hash, and
	// the order must be strict: exactly one direction wins.
	tieSmall := &TipInfo{Hash: chainhash.Hash{0x01}, Height: 3}
	tieBig := &TipInfo{Hash: chainhash.Hash{0x02}, Height: 3}
	if !forkChoice.BetterTip(tieSmall, tieBig) {
		t.Error("smaller hash not preferred on a height tie")
	}
	if forkChoice.BetterTip(tieBig, tieSmall) {
		t.Error("larger hash preferred on a height tie")
	}
}

// depthFirstForkChoice is a deliberately contrarian policy for tests: it
// prefers the lower tip, so the chain head stays as close to genesis as
// possible.
type depthFirstForkChoice struct{}

func (depthFirstForkChoice) BetterTip(a, b *TipInfo) bool {
	if a.Height != b.Height {
		return a.Height < b.Height
	}
	return bytes.Compare(a.Hash[:], b.Hash[:]) < 0
}

func TestCustomForkChoice(t *testing.T) {
	chain, teardown := chainSetup(t, "TestCustomForkChoice",
		&Config{ForkChoice: depthFirstForkChoice{}})
	defer teardown()

	genesis := testGenesis()
	blockA := childBlock(genesis, 1)
	blockB := childBlock(blockA, 2)
	processBlocks(t, chain, blockA, blockB)

	// Under the contrarian policy the head never leaves genesis, yet the
	// blocks are committed and queryable on their branch.
	headHash, headHeight := chain.BestHead()
	if !headHash.IsEqual(genesis.BlockHash()) || headHeight != 0 {
		t.Errorf("head is %s (%d), want genesis %s (0)", headHash,
			headHeight, genesis.BlockHash())
	}
	if !chain.IsInChain(blockB.BlockHash()) {
		t.Error("committed block missing from the block tree")
	}
	if chain.IsInBestChain(blockB.BlockHash()) {
		t.Error("block beyond the head reported in the best chain")
	}
}
