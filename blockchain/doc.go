// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package blockchain implements block import and best-chain state management.

The Chain type accepts blocks, executes them against the state of their
parent through a caller-supplied Executor, and persists both the block and
the resulting state atomically. Competing branches are tracked as a block
tree and the best-chain head is selected by a pluggable fork-choice policy.
Blocks that arrive before their parent are held in a bounded orphan pool
and re-processed once the missing parent is committed.

Processing a block is handled by the ProcessBlock function which includes
functionality to determine whether or not the block is an orphan, checking
it against structural validation rules, executing it, and finally either
extending the current best chain or triggering a reorganization when the
fork-choice policy prefers the new branch.

Errors

Errors returned by this package are either the raw errors provided by
underlying calls or the RuleError type which indicates the block was
rejected. The caller can use type assertions to distinguish a rejected
block from an unexpected failure such as a storage error.
*/
package blockchain
