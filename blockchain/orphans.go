// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"time"

	"github.com/pkg/errors"

	"github.com/chainforge/chainforge/util/chainhash"
	"github.com/chainforge/chainforge/wire"
)

const (
	// defaultMaxOrphanBlocks is the default maximum number of orphan
	// blocks that can be queued.
	defaultMaxOrphanBlocks = 100

	// defaultOrphanExpiration is the default duration an orphan block is
	// kept before it is expired out of the pool.
	defaultOrphanExpiration = time.Hour
)

// orphanBlock represents a block for which the parent is not yet
// available. It is a normal block with some additional metadata required
// for the orphan pool.
type orphanBlock struct {
	block      *wire.Block
	expiration time.Time
}

// IsKnownOrphan returns whether the passed hash is currently a known
// orphan. Keep in mind that only a limited number of orphans are held
// onto for a limited amount of time, so this function must not be used as
// an absolute way to test if a block is an orphan block. A full block
// (as opposed to just its hash) must be passed to ProcessBlock for that
// purpose. This implies that a block could be resubmitted after it was
// expired or evicted.
//
// This function is safe for concurrent access.
func (c *Chain) IsKnownOrphan(hash *chainhash.Hash) bool {
	c.orphanLock.RLock()
	_, exists := c.orphans[*hash]
	c.orphanLock.RUnlock()
	return exists
}

// removeOrphanBlock removes the passed orphan block from the orphan pool
// and parent index.
func (c *Chain) removeOrphanBlock(orphan *orphanBlock) {
	c.orphanLock.Lock()
	defer c.orphanLock.Unlock()

	orphanHash := orphan.block.BlockHash()
	delete(c.orphans, *orphanHash)

	// Remove the reference from the parent index too.
	parentHash := orphan.block.ParentHash
	orphans := c.prevOrphans[parentHash]
	for i := 0; i < len(orphans); i++ {
		hash := orphans[i].block.BlockHash()
		if hash.IsEqual(orphanHash) {
			copy(orphans[i:], orphans[i+1:])
			orphans[len(orphans)-1] = nil
			orphans = orphans[:len(orphans)-1]
			i--
		}
	}
	c.prevOrphans[parentHash] = orphans

	// Remove the map entry altogether if there are no longer any orphans
	// which depend on the parent hash.
	if len(c.prevOrphans[parentHash]) == 0 {
		delete(c.prevOrphans, parentHash)
	}
}

// addOrphanBlock adds the passed block (which is already determined to be
// an orphan prior to calling this function) to the orphan pool. It lazily
// cleans up any expired blocks so a separate cleanup poller doesn't need
// to be run. When the pool is at capacity the incoming block is dropped,
// which in practice favors orphans that have been waiting for a parent
// over brand new arrivals.
func (c *Chain) addOrphanBlock(block *wire.Block) {
	// Remove expired orphan blocks.
	for _, oBlock := range c.orphans {
		if time.Now().After(oBlock.expiration) {
			c.removeOrphanBlock(oBlock)
		}
	}

	// Limit orphan blocks to prevent memory exhaustion.
	if len(c.orphans)+1 > c.maxOrphans {
		log.Debugf("Orphan pool is full, dropping block %s",
			block.BlockHash())
		return
	}

	c.orphanLock.Lock()
	defer c.orphanLock.Unlock()

	// Insert the block into the orphan map with an expiration time.
	oBlock := &orphanBlock{
		block:      block,
		expiration: time.Now().Add(c.orphanExpiration),
	}
	c.orphans[*block.BlockHash()] = oBlock

	// Add to parent hash lookup index for faster dependency lookups.
	c.prevOrphans[block.ParentHash] = append(c.prevOrphans[block.ParentHash], oBlock)
}

// processOrphans determines if there are any orphans which depend on the
// passed block hash (they are no longer orphans if true) and potentially
// accepts them. It repeats the process for the newly accepted blocks (to
// detect further orphans which may no longer be orphans) until there are
// no more.
//
// The flags do not modify the behavior of this function directly, however
// they are needed to pass along to maybeAcceptBlock.
//
// This function MUST be called with the chain lock held (for writes).
func (c *Chain) processOrphans(hash *chainhash.Hash, flags BehaviorFlags) error {
	// Start with processing at least the passed hash. Leave a little room
	// for additional orphan blocks that need to be processed without
	// needing to grow the array in the common case.
	processHashes := make([]*chainhash.Hash, 0, 10)
	processHashes = append(processHashes, hash)
	for len(processHashes) > 0 {
		// Pop the first hash to process from the slice.
		processHash := processHashes[0]
		processHashes[0] = nil // Prevent GC leak.
		processHashes = processHashes[1:]

		// Look up all orphans that are parented by the block we just
		// accepted. An indexing for loop is intentionally used over a
		// range here as range does not reevaluate the slice on each
		// iteration nor does it adjust the index for the modified slice.
		for i := 0; i < len(c.prevOrphans[*processHash]); i++ {
			orphan := c.prevOrphans[*processHash][i]
			if orphan == nil {
				log.Warnf("Found a nil entry at index %d in the "+
					"orphan dependency list for block %s", i,
					processHash)
				continue
			}

			// Remove the orphan from the orphan pool.
			orphanHash := orphan.block.BlockHash()
			c.removeOrphanBlock(orphan)
			i--

			// Potentially accept the block into the chain. A rule
			// violation only rejects this orphan, it does not abort
			// processing of its siblings.
			err := c.maybeAcceptBlock(orphan.block, flags|BFWasUnorphaned)
			if err != nil {
				var ruleErr RuleError
				if !errors.As(err, &ruleErr) {
					return err
				}
				log.Warnf("Rejected unorphaned block %s: %s",
					orphanHash, err)
				continue
			}

			// Add this block to the list of blocks to process so any
			// orphan blocks that depend on this block are handled too.
			processHashes = append(processHashes, orphanHash)
		}
	}
	return nil
}
