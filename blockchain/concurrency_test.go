// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sync"
	"testing"

	"github.com/chainforge/chainforge/wire"
)

func TestConcurrentProcessBlock(t *testing.T) {
	chain, teardown := chainSetup(t, "TestConcurrentProcessBlock", nil)
	defer teardown()

	// Race many competing siblings plus duplicates of each. Imports are
	// serialized internally, so every block must end up committed exactly
	// once and the head must settle on one of them.
	genesis := testGenesis()
	siblings := make([]*wire.Block, 8)
	for i := range siblings {
		siblings[i] = childBlock(genesis, uint64(i+1))
	}

	var wg sync.WaitGroup
	for _, block := range siblings {
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func(block *wire.Block) {
				defer wg.Done()
				_, err := chain.ProcessBlock(block, BFNone)
				if err != nil {
					t.Errorf("ProcessBlock of %s: %s", block.BlockHash(), err)
				}
			}(block)
		}
	}
	wg.Wait()

	if got := chain.BlockCount(); got != uint64(len(siblings))+1 {
		t.Errorf("block count is %d, want %d", got, len(siblings)+1)
	}
	headHash, headHeight := chain.BestHead()
	if headHeight != 1 {
		t.Fatalf("head height is %d, want 1", headHeight)
	}
	headIsSibling := false
	for _, block := range siblings {
		if !chain.IsInChain(block.BlockHash()) {
			t.Errorf("sibling %s was not committed", block.BlockHash())
		}
		if headHash.IsEqual(block.BlockHash()) {
			headIsSibling = true
		}
	}
	if !headIsSibling {
		t.Errorf("head %s is not one of the submitted siblings", headHash)
	}
}
