// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sync"

	"github.com/chainforge/chainforge/util/chainhash"
)

// blockIndex provides facilities for keeping track of the in-memory block
// tree. Nodes are only added after their block has been committed to the
// database, so every node in the index is backed by persisted data.
type blockIndex struct {
	sync.RWMutex
	index map[chainhash.Hash]*blockNode
}

// newBlockIndex returns a new empty instance of a block index.
func newBlockIndex() *blockIndex {
	return &blockIndex{
		index: make(map[chainhash.Hash]*blockNode),
	}
}

// HaveBlock returns whether or not the block index contains the provided
// hash.
//
// This function is safe for concurrent access.
func (bi *blockIndex) HaveBlock(hash *chainhash.Hash) bool {
	bi.RLock()
	_, hasBlock := bi.index[*hash]
	bi.RUnlock()
	return hasBlock
}

// LookupNode returns the block node identified by the provided hash.
//
// This function is safe for concurrent access.
func (bi *blockIndex) LookupNode(hash *chainhash.Hash) (*blockNode, bool) {
	bi.RLock()
	node, ok := bi.index[*hash]
	bi.RUnlock()
	return node, ok
}

// AddNode adds the provided node to the block index and links it into the
// children of its parent.
//
// This function is safe for concurrent access.
func (bi *blockIndex) AddNode(node *blockNode) {
	bi.Lock()
	bi.index[node.hash] = node
	if node.parent != nil {
		node.parent.children = append(node.parent.children, node)
	}
	bi.Unlock()
}
