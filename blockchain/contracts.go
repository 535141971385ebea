// Copyright (c) 2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/chainforge/chainforge/wire"

// Executor applies blocks to states. The chain treats states as opaque
// byte slices, so the executor defines both the state encoding and the
// transition semantics.
//
// Execute is called with the block being imported and the committed state
// of its parent, and returns the state resulting from applying the block.
// It must be deterministic: replaying the same block against the same
// parent state must yield the same result. Returning an error rejects the
// block without affecting the parent state or any other branch.
//
// Implementations must not retain or modify parentState, and must return
// a state the chain is free to retain.
type Executor interface {
	Execute(block *wire.Block, parentState []byte) ([]byte, error)
}

// StructuralValidator performs context-free checks on a block before the
// chain attempts to execute it. It is consulted with no knowledge of the
// parent, so the checks must depend only on the contents of the block
// itself. Returning an error rejects the block.
type StructuralValidator interface {
	CheckBlockSanity(block *wire.Block) error
}
