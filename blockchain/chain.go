// Copyright (c) 2013-2018 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/chainforge/chainforge/database"
	"github.com/chainforge/chainforge/dbaccess"
	"github.com/chainforge/chainforge/util/chainhash"
	"github.com/chainforge/chainforge/wire"
)

// Config is a descriptor which specifies the blockchain instance
// configuration.
type Config struct {
	// DatabaseContext defines the database which houses the blocks,
	// block states and chain state.
	//
	// This field is required.
	DatabaseContext *dbaccess.DatabaseContext

	// Genesis is the block the chain is rooted at. It must declare
	// height 0 and a zero parent hash. When the database is empty the
	// genesis block and GenesisState are committed as the initial chain,
	// otherwise the configured genesis must match the one on disk.
	//
	// This field is required.
	Genesis *wire.Block

	// GenesisState is the state associated with the genesis block. It
	// may be nil when the executor treats an empty state as valid.
	GenesisState []byte

	// Executor defines the state-transition semantics of this chain.
	//
	// This field is required.
	Executor Executor

	// Validator performs context-free block checks before execution.
	//
	// This field can be nil if the caller does not require such checks.
	Validator StructuralValidator

	// ForkChoice selects the best-chain head among competing branches.
	//
	// This field can be nil, in which case the height-based policy
	// returned by NewHeightForkChoice is used.
	ForkChoice ForkChoice

	// MaxOrphans is the maximum number of blocks held in the orphan
	// pool. Zero selects the default of 100.
	MaxOrphans int

	// OrphanExpiration is how long an orphan block is held before it is
	// expired out of the pool. Zero selects the default of one hour.
	OrphanExpiration time.Duration
}

// Chain provides functions for working with the block tree and its
// best chain. It includes functionality such as importing blocks,
// executing them against their parent state, orphan handling and
// best-chain selection along with reorganization.
type Chain struct {
	databaseContext *dbaccess.DatabaseContext
	executor        Executor
	validator       StructuralValidator
	forkChoice      ForkChoice

	maxOrphans       int
	orphanExpiration time.Duration

	// chainLock protects operations on the block tree and the best-chain
	// head. Imports take it for writes, queries for reads.
	chainLock sync.RWMutex

	index      *blockIndex
	genesis    *blockNode
	bestHead   *blockNode
	blockCount uint64

	// These fields are related to handling of orphan blocks. They are
	// protected by a combination of the chain lock and the orphan lock.
	orphanLock  sync.RWMutex
	orphans     map[chainhash.Hash]*orphanBlock
	prevOrphans map[chainhash.Hash][]*orphanBlock

	// notifications is the list of callbacks fired on chain events.
	notificationsLock sync.RWMutex
	notifications     []NotificationCallback
}

// New returns a Chain instance using the provided configuration details.
// On a fresh database the configured genesis block is committed as the
// initial chain, otherwise the block tree and best-chain head are
// restored from the database.
func New(config *Config) (*Chain, error) {
	if config.DatabaseContext == nil {
		return nil, errors.New("blockchain.New database context is nil")
	}
	if config.Genesis == nil {
		return nil, errors.New("blockchain.New genesis block is nil")
	}
	if config.Executor == nil {
		return nil, errors.New("blockchain.New executor is nil")
	}
	if !config.Genesis.IsGenesis() || config.Genesis.Height != 0 {
		return nil, errors.New("blockchain.New genesis block must have " +
			"height 0 and a zero parent hash")
	}

	forkChoice := config.ForkChoice
	if forkChoice == nil {
		forkChoice = NewHeightForkChoice()
	}
	maxOrphans := config.MaxOrphans
	if maxOrphans == 0 {
		maxOrphans = defaultMaxOrphanBlocks
	}
	orphanExpiration := config.OrphanExpiration
	if orphanExpiration == 0 {
		orphanExpiration = defaultOrphanExpiration
	}

	c := &Chain{
		databaseContext:  config.DatabaseContext,
		executor:         config.Executor,
		validator:        config.Validator,
		forkChoice:       forkChoice,
		maxOrphans:       maxOrphans,
		orphanExpiration: orphanExpiration,
		index:            newBlockIndex(),
		orphans:          make(map[chainhash.Hash]*orphanBlock),
		prevOrphans:      make(map[chainhash.Hash][]*orphanBlock),
	}
	c.genesis = newBlockNode(config.Genesis.BlockHash(), nil)

	persistedHead, err := dbaccess.FetchChainState(c.databaseContext)
	if database.IsNotFoundError(err) {
		err := c.createChainState(config.Genesis, config.GenesisState)
		if err != nil {
			return nil, err
		}
		log.Infof("Initialized new chain with genesis block %s",
			c.genesis.hash)
		return c, nil
	}
	if err != nil {
		return nil, err
	}

	err = c.restoreChainState(persistedHead)
	if err != nil {
		return nil, err
	}
	log.Infof("Restored chain with %d block(s), head %s", c.blockCount,
		c.bestHead)
	return c, nil
}

// createChainState commits the genesis block and its state as the initial
// chain of a fresh database.
func (c *Chain) createChainState(genesis *wire.Block, genesisState []byte) error {
	blockBytes, err := genesis.Bytes()
	if err != nil {
		return err
	}

	dbTx, err := c.databaseContext.NewTx()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	err = dbaccess.StoreBlock(dbTx, &c.genesis.hash, 0, blockBytes)
	if err != nil {
		return err
	}
	err = dbaccess.StoreState(dbTx, &c.genesis.hash, genesisState)
	if err != nil {
		return err
	}
	err = dbaccess.StoreChainState(dbTx, &c.genesis.hash)
	if err != nil {
		return err
	}
	err = dbTx.Commit()
	if err != nil {
		return err
	}

	c.index.AddNode(c.genesis)
	c.bestHead = c.genesis
	c.blockCount = 1
	return nil
}

// restoreChainState rebuilds the in-memory block tree from the block
// index on disk. The index is keyed by height, so iterating it in order
// guarantees every parent is restored before its children. The best-chain
// head is re-derived through fork choice and cross-checked against the
// persisted head.
func (c *Chain) restoreChainState(persistedHead *chainhash.Hash) error {
	cursor, err := dbaccess.BlockIndexCursor(c.databaseContext)
	if err != nil {
		return err
	}
	defer cursor.Close()

	for ok := cursor.First(); ok; ok = cursor.Next() {
		value, err := cursor.Value()
		if err != nil {
			return err
		}
		hash, err := chainhash.NewHash(value)
		if err != nil {
			return err
		}

		blockBytes, err := dbaccess.FetchBlock(c.databaseContext, hash)
		if err != nil {
			return err
		}
		block, err := wire.DeserializeBlock(blockBytes)
		if err != nil {
			return errors.Wrapf(err, "failed deserializing block %s", hash)
		}

		var node *blockNode
		if block.IsGenesis() {
			if !hash.IsEqual(&c.genesis.hash) {
				return errors.Errorf("genesis block mismatch: the "+
					"database is rooted at %s, but the configured "+
					"genesis block is %s", hash, c.genesis.hash)
			}
			node = c.genesis
		} else {
			parent, ok := c.index.LookupNode(&block.ParentHash)
			if !ok {
				return errors.Errorf("block %s references parent %s "+
					"which is missing from the block index", hash,
					block.ParentHash)
			}
			node = newBlockNode(hash, parent)
			if node.height != block.Height {
				return errors.Errorf("block %s declares height %d, "+
					"but is indexed at height %d", hash, block.Height,
					node.height)
			}
		}

		c.index.AddNode(node)
		c.blockCount++
		if c.bestHead == nil || c.forkChoice.BetterTip(node.tipInfo(), c.bestHead.tipInfo()) {
			c.bestHead = node
		}
	}

	if c.bestHead == nil {
		return errors.New("chain state exists but the block index is empty")
	}
	if !c.bestHead.hash.IsEqual(persistedHead) {
		// Can happen when the fork-choice policy changed between runs.
		log.Warnf("Persisted chain head %s differs from the fork-choice "+
			"preferred head %s, using the preferred head", persistedHead,
			c.bestHead.hash)
	}
	return nil
}

// BestHead returns the hash and height of the current best-chain head.
//
// This function is safe for concurrent access.
func (c *Chain) BestHead() (chainhash.Hash, uint64) {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()
	return c.bestHead.hash, c.bestHead.height
}

// GenesisHash returns the hash of the genesis block the chain is rooted
// at.
func (c *Chain) GenesisHash() chainhash.Hash {
	return c.genesis.hash
}

// BlockCount returns the number of committed blocks, counting every
// branch of the block tree.
//
// This function is safe for concurrent access.
func (c *Chain) BlockCount() uint64 {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()
	return c.blockCount
}

// HaveBlock returns whether or not the chain instance has the block
// represented by the passed hash. This includes checking the various
// places a block can be in, like part of the best chain, on a side
// branch, or in the orphan pool.
//
// This function is safe for concurrent access.
func (c *Chain) HaveBlock(hash *chainhash.Hash) bool {
	return c.index.HaveBlock(hash) || c.IsKnownOrphan(hash)
}

// IsInChain returns whether the block with the given hash has been
// committed to the block tree, on any branch. Orphans are not considered
// committed.
//
// This function is safe for concurrent access.
func (c *Chain) IsInChain(hash *chainhash.Hash) bool {
	return c.index.HaveBlock(hash)
}

// HeightOf returns the height of the committed block with the given
// hash. The second return value reports whether the block is known.
//
// This function is safe for concurrent access.
func (c *Chain) HeightOf(hash *chainhash.Hash) (uint64, bool) {
	node, ok := c.index.LookupNode(hash)
	if !ok {
		return 0, false
	}
	return node.height, true
}

// BlockByHash returns the committed block with the given hash. It
// returns an error wrapping database.ErrNotFound when the hash is not
// known.
//
// This function is safe for concurrent access.
func (c *Chain) BlockByHash(hash *chainhash.Hash) (*wire.Block, error) {
	if !c.index.HaveBlock(hash) {
		return nil, errors.Wrapf(database.ErrNotFound,
			"block %s is not known", hash)
	}
	blockBytes, err := dbaccess.FetchBlock(c.databaseContext, hash)
	if err != nil {
		return nil, err
	}
	return wire.DeserializeBlock(blockBytes)
}

// StateByHash returns the committed state resulting from the block with
// the given hash, for any branch of the block tree. It returns an error
// wrapping database.ErrNotFound when the hash is not known.
//
// This function is safe for concurrent access.
func (c *Chain) StateByHash(hash *chainhash.Hash) ([]byte, error) {
	if !c.index.HaveBlock(hash) {
		return nil, errors.Wrapf(database.ErrNotFound,
			"block %s is not known", hash)
	}
	return dbaccess.FetchState(c.databaseContext, hash)
}

// State returns the committed state at the current best-chain head.
//
// This function is safe for concurrent access.
func (c *Chain) State() ([]byte, error) {
	c.chainLock.RLock()
	headHash := c.bestHead.hash
	c.chainLock.RUnlock()
	return dbaccess.FetchState(c.databaseContext, &headHash)
}

// IsInBestChain returns whether the block with the given hash is part of
// the current best chain.
//
// This function is safe for concurrent access.
func (c *Chain) IsInBestChain(hash *chainhash.Hash) bool {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()

	node, ok := c.index.LookupNode(hash)
	if !ok {
		return false
	}
	return c.bestHead.Ancestor(node.height) == node
}

// BlockHashByHeight returns the hash of the block at the given height on
// the current best chain. It returns an error wrapping
// database.ErrNotFound when the height is beyond the best-chain head.
//
// This function is safe for concurrent access.
func (c *Chain) BlockHashByHeight(height uint64) (*chainhash.Hash, error) {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()

	node := c.bestHead.Ancestor(height)
	if node == nil {
		return nil, errors.Wrapf(database.ErrNotFound,
			"no best-chain block at height %d, the head is at height %d",
			height, c.bestHead.height)
	}
	hash := node.hash
	return &hash, nil
}

// ChildrenOf returns the hashes of the committed blocks whose parent is
// the block with the given hash, across every branch of the block tree.
// It returns an error when the hash is not known.
//
// This function is safe for concurrent access.
func (c *Chain) ChildrenOf(hash *chainhash.Hash) ([]chainhash.Hash, error) {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()

	node, ok := c.index.LookupNode(hash)
	if !ok {
		return nil, errors.Wrapf(database.ErrNotFound,
			"block %s is not known", hash)
	}
	childHashes := make([]chainhash.Hash, len(node.children))
	for i, child := range node.children {
		childHashes[i] = child.hash
	}
	return childHashes, nil
}
