// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/chainforge/chainforge/util/chainhash"
)

// blockNode represents a block within the block tree. The tree is rooted
// at the genesis block and every committed block, whether on the best
// chain or on a side branch, has exactly one node.
type blockNode struct {
	// parent is the parent block for this node. It is nil only for the
	// genesis node.
	parent *blockNode

	// children are the blocks whose parent is this block.
	children []*blockNode

	// hash is the hash of the block this node represents.
	hash chainhash.Hash

	// height is the position in the block tree. The genesis block is at
	// height 0.
	height uint64
}

// newBlockNode returns a new block node linked to the given parent. The
// height is derived from the parent, a nil parent produces the genesis
// node at height 0.
func newBlockNode(hash *chainhash.Hash, parent *blockNode) *blockNode {
	node := &blockNode{hash: *hash}
	if parent != nil {
		node.parent = parent
		node.height = parent.height + 1
	}
	return node
}

// Ancestor returns the ancestor of this node at the given height by
// walking the parent pointers. It returns nil when the requested height
// is greater than the node's own height.
func (node *blockNode) Ancestor(height uint64) *blockNode {
	if height > node.height {
		return nil
	}
	n := node
	for n.height > height {
		n = n.parent
	}
	return n
}

// isGenesis returns whether this node is the genesis node.
func (node *blockNode) isGenesis() bool {
	return node.parent == nil
}

// tipInfo returns the fork-choice view of this node.
func (node *blockNode) tipInfo() *TipInfo {
	return &TipInfo{Hash: node.hash, Height: node.height}
}

func (node *blockNode) String() string {
	return fmt.Sprintf("%s (%d)", node.hash, node.height)
}
