// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/chainforge/chainforge/util/chainhash"
	"github.com/chainforge/chainforge/wire"
)

func TestProcessBlockChainExtension(t *testing.T) {
	chain, teardown := chainSetup(t, "TestProcessBlockChainExtension", nil)
	defer teardown()

	genesis := testGenesis()
	blockA := childBlock(genesis, 1)
	blockB := childBlock(blockA, 2)
	blockC := childBlock(blockB, 3)
	processBlocks(t, chain, blockA, blockB, blockC)

	headHash, headHeight := chain.BestHead()
	if !headHash.IsEqual(blockC.BlockHash()) {
		t.Errorf("unexpected head %s, want %s", headHash, blockC.BlockHash())
	}
	if headHeight != 3 {
		t.Errorf("unexpected head height %d, want 3", headHeight)
	}
	if chain.BlockCount() != 4 {
		t.Errorf("unexpected block count %d, want 4", chain.BlockCount())
	}

	state, err := chain.State()
	if err != nil {
		t.Fatalf("State: %s", err)
	}
	if got := counterValue(t, state); got != 6 {
		t.Errorf("unexpected head state %d, want 6", got)
	}

	// Intermediate states stay retrievable.
	state, err = chain.StateByHash(blockA.BlockHash())
	if err != nil {
		t.Fatalf("StateByHash: %s", err)
	}
	if got := counterValue(t, state); got != 1 {
		t.Errorf("unexpected state of first block %d, want 1", got)
	}
}

func TestProcessBlockDuplicate(t *testing.T) {
	chain, teardown := chainSetup(t, "TestProcessBlockDuplicate", nil)
	defer teardown()

	var blockAddedCount int
	chain.Subscribe(func(notification *Notification) {
		if notification.Type == NTBlockAdded {
			blockAddedCount++
		}
	})

	blockA := childBlock(testGenesis(), 1)
	processBlocks(t, chain, blockA)

	// Re-submitting a committed block is a no-op success, not a rule
	// violation, and must not fire another notification.
	isOrphan, err := chain.ProcessBlock(blockA, BFNone)
	if err != nil {
		t.Fatalf("ProcessBlock of duplicate: unexpected error: %s", err)
	}
	if isOrphan {
		t.Fatal("ProcessBlock of duplicate: unexpectedly an orphan")
	}
	if blockAddedCount != 1 {
		t.Errorf("got %d block added notifications, want 1", blockAddedCount)
	}
	if chain.BlockCount() != 2 {
		t.Errorf("unexpected block count %d, want 2", chain.BlockCount())
	}

	// Same for the genesis block itself.
	isOrphan, err = chain.ProcessBlock(testGenesis(), BFNone)
	if err != nil {
		t.Fatalf("ProcessBlock of genesis: unexpected error: %s", err)
	}
	if isOrphan {
		t.Fatal("ProcessBlock of genesis: unexpectedly an orphan")
	}
}

func TestProcessBlockCompetingGenesis(t *testing.T) {
	chain, teardown := chainSetup(t, "TestProcessBlockCompetingGenesis", nil)
	defer teardown()

	otherGenesis := wire.NewBlock(&chainhash.ZeroHash, 0, counterPayload(7))
	_, err := chain.ProcessBlock(otherGenesis, BFNone)
	var ruleErr RuleError
	if !errors.As(err, &ruleErr) || ruleErr.ErrorCode != ErrInvalidBlock {
		t.Fatalf("ProcessBlock of competing genesis: got %v, want rule "+
			"error %s", err, ErrInvalidBlock)
	}
}

func TestProcessBlockBadHeight(t *testing.T) {
	chain, teardown := chainSetup(t, "TestProcessBlockBadHeight", nil)
	defer teardown()

	genesis := testGenesis()
	badHeight := wire.NewBlock(genesis.BlockHash(), 5, counterPayload(1))
	_, err := chain.ProcessBlock(badHeight, BFNone)
	var ruleErr RuleError
	if !errors.As(err, &ruleErr) || ruleErr.ErrorCode != ErrBadHeight {
		t.Fatalf("ProcessBlock with bad height: got %v, want rule error %s",
			err, ErrBadHeight)
	}
	if chain.IsInChain(badHeight.BlockHash()) {
		t.Error("rejected block was added to the block tree")
	}
}

// oddPayloadValidator rejects blocks whose payload has an odd first byte.
type oddPayloadValidator struct{}

func (oddPayloadValidator) CheckBlockSanity(block *wire.Block) error {
	if len(block.Payload) > 0 && block.Payload[0]%2 != 0 {
		return errors.New("odd payloads are not welcome here")
	}
	return nil
}

func TestProcessBlockStructuralValidation(t *testing.T) {
	chain, teardown := chainSetup(t, "TestProcessBlockStructuralValidation",
		&Config{Validator: oddPayloadValidator{}})
	defer teardown()

	genesis := testGenesis()
	rejected := childBlock(genesis, 1)
	accepted := childBlock(genesis, 2)

	_, err := chain.ProcessBlock(rejected, BFNone)
	var ruleErr RuleError
	if !errors.As(err, &ruleErr) || ruleErr.ErrorCode != ErrInvalidBlock {
		t.Fatalf("ProcessBlock of structurally invalid block: got %v, "+
			"want rule error %s", err, ErrInvalidBlock)
	}
	if chain.IsInChain(rejected.BlockHash()) {
		t.Error("structurally invalid block was added to the block tree")
	}

	processBlocks(t, chain, accepted)
}

func TestProcessBlockExecutionFailure(t *testing.T) {
	chain, teardown := chainSetup(t, "TestProcessBlockExecutionFailure", nil)
	defer teardown()

	genesis := testGenesis()
	blockA := childBlock(genesis, 1)
	processBlocks(t, chain, blockA)

	failing := wire.NewBlock(blockA.BlockHash(), 2, []byte("fail"))
	_, err := chain.ProcessBlock(failing, BFNone)
	var ruleErr RuleError
	if !errors.As(err, &ruleErr) || ruleErr.ErrorCode != ErrExecutionFailed {
		t.Fatalf("ProcessBlock of failing block: got %v, want rule error %s",
			err, ErrExecutionFailed)
	}
	if chain.IsInChain(failing.BlockHash()) {
		t.Error("failed block was added to the block tree")
	}

	// The rejection must not have disturbed the branch: a valid sibling
	// still extends it.
	blockB := childBlock(blockA, 2)
	processBlocks(t, chain, blockB)
	headHash, _ := chain.BestHead()
	if !headHash.IsEqual(blockB.BlockHash()) {
		t.Errorf("unexpected head %s, want %s", headHash, blockB.BlockHash())
	}
}

func TestProcessBlockOrphanResolution(t *testing.T) {
	chain, teardown := chainSetup(t, "TestProcessBlockOrphanResolution", nil)
	defer teardown()

	var unorphaned []chainhash.Hash
	chain.Subscribe(func(notification *Notification) {
		if notification.Type != NTBlockAdded {
			return
		}
		data := notification.Data.(*BlockAddedNotificationData)
		if data.WasUnorphaned {
			unorphaned = append(unorphaned, *data.Block.BlockHash())
		}
	})

	genesis := testGenesis()
	blockA := childBlock(genesis, 1)
	blockB := childBlock(blockA, 2)
	blockC := childBlock(blockB, 3)

	// Deliver children before their parent. Both must be held as orphans.
	for _, block := range []*wire.Block{blockC, blockB} {
		isOrphan, err := chain.ProcessBlock(block, BFNone)
		if err != nil {
			t.Fatalf("ProcessBlock of %s: %s", block.BlockHash(), err)
		}
		if !isOrphan {
			t.Fatalf("ProcessBlock of %s: expected an orphan", block.BlockHash())
		}
		if !chain.IsKnownOrphan(block.BlockHash()) {
			t.Fatalf("block %s missing from the orphan pool", block.BlockHash())
		}
	}

	// The missing parent arrives and the whole dependent sequence must
	// cascade in.
	processBlocks(t, chain, blockA)

	headHash, headHeight := chain.BestHead()
	if !headHash.IsEqual(blockC.BlockHash()) || headHeight != 3 {
		t.Fatalf("unexpected head %s (%d), want %s (3)", headHash,
			headHeight, blockC.BlockHash())
	}
	if chain.IsKnownOrphan(blockB.BlockHash()) || chain.IsKnownOrphan(blockC.BlockHash()) {
		t.Error("unorphaned blocks still in the orphan pool")
	}
	if len(unorphaned) != 2 {
		t.Fatalf("got %d unorphaned notifications, want 2", len(unorphaned))
	}
	if !unorphaned[0].IsEqual(blockB.BlockHash()) || !unorphaned[1].IsEqual(blockC.BlockHash()) {
		t.Errorf("unorphaned blocks in unexpected order: %v", unorphaned)
	}

	state, err := chain.State()
	if err != nil {
		t.Fatalf("State: %s", err)
	}
	if got := counterValue(t, state); got != 6 {
		t.Errorf("unexpected head state %d, want 6", got)
	}
}

func TestProcessBlockDeterministicReplay(t *testing.T) {
	genesis := testGenesis()
	blockA := childBlock(genesis, 1)
	blockB1 := childBlock(blockA, 2)
	blockB2 := childBlock(blockA, 3)
	blockC := childBlock(blockB2, 4)
	blocks := []*wire.Block{blockA, blockB1, blockB2, blockC}

	run := func(name string) (chainhash.Hash, uint64) {
		chain, teardown := chainSetup(t, name, nil)
		defer teardown()
		processBlocks(t, chain, blocks...)
		headHash, _ := chain.BestHead()
		state, err := chain.State()
		if err != nil {
			t.Fatalf("State: %s", err)
		}
		return headHash, counterValue(t, state)
	}

	firstHead, firstState := run("TestProcessBlockReplayFirst")
	secondHead, secondState := run("TestProcessBlockReplaySecond")
	if !firstHead.IsEqual(&secondHead) || firstState != secondState {
		t.Errorf("replay diverged: head %s/%d vs %s/%d", firstHead,
			firstState, secondHead, secondState)
	}
}
