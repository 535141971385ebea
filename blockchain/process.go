// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/chainforge/chainforge/wire"
)

// BehaviorFlags is a bitmask defining tweaks to the normal behavior when
// performing chain processing and consensus rules checks.
type BehaviorFlags uint32

const (
	// BFWasUnorphaned may be set to indicate that a block was just now
	// taken out of the orphan pool.
	BFWasUnorphaned BehaviorFlags = 1 << iota

	// BFNone is a convenience value to specifically indicate no flags.
	BFNone BehaviorFlags = 0
)

// ProcessBlock is the main workhorse for handling insertion of new blocks
// into the block tree. It includes functionality such as rejecting
// duplicate blocks, ensuring blocks follow all rules, orphan handling,
// executing the block and committing it together with its resulting
// state.
//
// It returns whether or not the block was held as an orphan. When the
// returned values are (false, nil) the block has been committed, or had
// already been committed earlier: re-submission of a known block is a
// no-op success. A non-nil error of type RuleError means the block was
// rejected, any other error indicates an unexpected failure such as a
// storage error.
//
// This function is safe for concurrent access.
func (c *Chain) ProcessBlock(block *wire.Block, flags BehaviorFlags) (isOrphan bool, err error) {
	c.chainLock.Lock()
	defer c.chainLock.Unlock()
	return c.processBlockNoLock(block, flags)
}

func (c *Chain) processBlockNoLock(block *wire.Block, flags BehaviorFlags) (isOrphan bool, err error) {
	blockHash := block.BlockHash()
	log.Tracef("Processing block %s", blockHash)

	// The block must not already exist in the block tree.
	if c.index.HaveBlock(blockHash) {
		log.Debugf("Already have block %s", blockHash)
		return false, nil
	}

	// The block must not already exist as an orphan.
	if c.IsKnownOrphan(blockHash) {
		log.Debugf("Already have block (orphan) %s", blockHash)
		return true, nil
	}

	// Perform preliminary sanity checks on the block.
	err = c.checkBlockSanity(block)
	if err != nil {
		return false, err
	}

	// There is exactly one genesis block per chain and it is seeded when
	// the chain is created, so any further block claiming a zero parent
	// is a competing genesis rather than an orphan.
	if block.IsGenesis() {
		return false, ruleError(ErrInvalidBlock, fmt.Sprintf(
			"block %s claims to be a genesis block, but the chain is "+
				"already rooted at %s", blockHash, c.genesis.hash))
	}

	// Handle orphan blocks.
	if !c.index.HaveBlock(&block.ParentHash) {
		log.Infof("Adding orphan block %s with parent %s", blockHash,
			block.ParentHash)
		c.addOrphanBlock(block)
		return true, nil
	}

	// The block has passed all context-free checks and its parent is
	// known, so potentially accept it into the block tree.
	err = c.maybeAcceptBlock(block, flags)
	if err != nil {
		return false, err
	}

	// Accept any orphan blocks that depend on this block (they are no
	// longer orphans) and repeat for those accepted blocks until there
	// are no more.
	err = c.processOrphans(blockHash, flags)
	if err != nil {
		return false, err
	}

	log.Debugf("Accepted block %s", blockHash)
	return false, nil
}
