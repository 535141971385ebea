// Copyright (c) 2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/pkg/errors"

	"github.com/chainforge/chainforge/util/chainhash"
)

// TreeRoute describes the path between two blocks in the block tree
// through their lowest common ancestor.
//
// The detached side lists the blocks that lie on the branch of the from
// block, ordered from the from block down toward the common ancestor. The
// attached side lists the blocks on the branch of the to block, ordered
// from just above the common ancestor up to the to block. Neither side
// includes the common ancestor itself. When one block is an ancestor of
// the other the corresponding side is empty.
type TreeRoute struct {
	detached       []*blockNode
	commonAncestor *blockNode
	attached       []*blockNode
}

// DetachedHashes returns the hashes on the from side of the route,
// ordered from deepest to shallowest.
func (route *TreeRoute) DetachedHashes() []chainhash.Hash {
	hashes := make([]chainhash.Hash, len(route.detached))
	for i, node := range route.detached {
		hashes[i] = node.hash
	}
	return hashes
}

// AttachedHashes returns the hashes on the to side of the route, ordered
// from shallowest to deepest.
func (route *TreeRoute) AttachedHashes() []chainhash.Hash {
	hashes := make([]chainhash.Hash, len(route.attached))
	for i, node := range route.attached {
		hashes[i] = node.hash
	}
	return hashes
}

// CommonAncestorHash returns the hash of the lowest common ancestor of
// the two route endpoints.
func (route *TreeRoute) CommonAncestorHash() chainhash.Hash {
	return route.commonAncestor.hash
}

// treeRouteBetweenNodes computes the route between the given nodes. Both
// nodes must belong to the same tree, which always holds for nodes rooted
// at the same genesis.
func treeRouteBetweenNodes(from, to *blockNode) *TreeRoute {
	var detached, attached []*blockNode
	for to.height > from.height {
		attached = append(attached, to)
		to = to.parent
	}
	for from.height > to.height {
		detached = append(detached, from)
		from = from.parent
	}
	for from != to {
		detached = append(detached, from)
		from = from.parent
		attached = append(attached, to)
		to = to.parent
	}

	// The attached side was collected walking downward, reverse it so it
	// reads from the common ancestor out to the tip.
	for i, j := 0, len(attached)-1; i < j; i, j = i+1, j-1 {
		attached[i], attached[j] = attached[j], attached[i]
	}

	return &TreeRoute{
		detached:       detached,
		commonAncestor: from,
		attached:       attached,
	}
}

// TreeRouteBetween computes the route between two committed blocks. It
// returns an error when either hash is not known to the chain.
//
// This function is safe for concurrent access.
func (c *Chain) TreeRouteBetween(fromHash, toHash *chainhash.Hash) (*TreeRoute, error) {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()

	fromNode, ok := c.index.LookupNode(fromHash)
	if !ok {
		return nil, errors.Errorf("block %s is not known", fromHash)
	}
	toNode, ok := c.index.LookupNode(toHash)
	if !ok {
		return nil, errors.Errorf("block %s is not known", toHash)
	}
	return treeRouteBetweenNodes(fromNode, toNode), nil
}
