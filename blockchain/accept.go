// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/chainforge/chainforge/dbaccess"
	"github.com/chainforge/chainforge/wire"
)

// maybeAcceptBlock potentially accepts a block into the block tree. It
// performs the contextual checks, executes the block against the state of
// its parent, runs fork choice, and atomically commits the block, its
// state and any head change before the in-memory index is touched. A
// storage failure therefore can never leave the index referencing an
// uncommitted block.
//
// The parent of the block must already be committed. The flags only
// affect the notification sent for the block.
//
// This function MUST be called with the chain lock held (for writes).
func (c *Chain) maybeAcceptBlock(block *wire.Block, flags BehaviorFlags) error {
	blockHash := block.BlockHash()

	parent, ok := c.index.LookupNode(&block.ParentHash)
	if !ok {
		return ruleError(ErrParentBlockUnknown, fmt.Sprintf(
			"parent block %s of block %s is unknown",
			block.ParentHash, blockHash))
	}

	err := checkBlockContext(block, parent)
	if err != nil {
		return err
	}

	// Execute the block against the committed state of its parent. An
	// executor rejection leaves the parent state and every other branch
	// untouched.
	parentState, err := dbaccess.FetchState(c.databaseContext, &parent.hash)
	if err != nil {
		return errors.Wrapf(err, "failed fetching the state of parent "+
			"block %s", parent.hash)
	}
	newState, err := c.executor.Execute(block, parentState)
	if err != nil {
		return ruleError(ErrExecutionFailed, fmt.Sprintf(
			"execution of block %s failed: %s", blockHash, err))
	}

	node := newBlockNode(blockHash, parent)

	// Run fork choice for the candidate tip before anything is written,
	// so the head change can be committed in the same transaction as the
	// block itself.
	oldHead := c.bestHead
	newHead := oldHead
	var updates *TreeRoute
	if c.forkChoice.BetterTip(node.tipInfo(), oldHead.tipInfo()) {
		newHead = node
		updates = treeRouteBetweenNodes(oldHead, node)
	}

	err = c.commitBlock(block, node, newState, newHead)
	if err != nil {
		return err
	}

	// Only now that the database transaction has committed is the
	// in-memory view updated.
	c.index.AddNode(node)
	c.bestHead = newHead
	c.blockCount++

	if newHead != oldHead && !node.parent.hash.IsEqual(&oldHead.hash) {
		log.Infof("REORGANIZE: chain head moved from %s to %s, "+
			"%d block(s) detached, %d block(s) attached", oldHead,
			newHead, len(updates.detached), len(updates.attached))
	}

	// Notify the caller about the new block and any head movement. The
	// chain lock is released while the callbacks run so they are free to
	// query the chain.
	c.chainLock.Unlock()
	c.sendNotification(NTBlockAdded, &BlockAddedNotificationData{
		Block:         block,
		WasUnorphaned: flags&BFWasUnorphaned == BFWasUnorphaned,
	})
	if newHead != oldHead {
		c.sendNotification(NTChainChanged, &ChainChangedNotificationData{
			OldHeadHash:              oldHead.hash,
			NewHeadHash:              newHead.hash,
			DetachedChainBlockHashes: updates.DetachedHashes(),
			AttachedChainBlockHashes: updates.AttachedHashes(),
		})
	}
	c.chainLock.Lock()

	return nil
}

// commitBlock writes the block, its resulting state and, when the head
// moved, the new chain state in a single database transaction.
func (c *Chain) commitBlock(block *wire.Block, node *blockNode,
	state []byte, newHead *blockNode) error {

	blockBytes, err := block.Bytes()
	if err != nil {
		return err
	}

	dbTx, err := c.databaseContext.NewTx()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	err = dbaccess.StoreBlock(dbTx, &node.hash, node.height, blockBytes)
	if err != nil {
		return err
	}
	err = dbaccess.StoreState(dbTx, &node.hash, state)
	if err != nil {
		return err
	}
	if newHead != c.bestHead {
		err = dbaccess.StoreChainState(dbTx, &newHead.hash)
		if err != nil {
			return err
		}
	}
	return dbTx.Commit()
}
