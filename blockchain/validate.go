// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/chainforge/chainforge/wire"
)

// checkBlockSanity performs the context-free checks on a block: the
// intrinsic payload bound plus the caller-supplied structural validator,
// if any. Errors from the validator are wrapped as rule errors unless the
// validator already returned one.
func (c *Chain) checkBlockSanity(block *wire.Block) error {
	if len(block.Payload) > wire.MaxPayloadSize {
		return ruleError(ErrInvalidBlock, fmt.Sprintf(
			"block payload of %d bytes exceeds the maximum of %d bytes",
			len(block.Payload), wire.MaxPayloadSize))
	}

	if c.validator == nil {
		return nil
	}
	err := c.validator.CheckBlockSanity(block)
	if err != nil {
		var ruleErr RuleError
		if errors.As(err, &ruleErr) {
			return err
		}
		return ruleError(ErrInvalidBlock, fmt.Sprintf(
			"block %s failed structural validation: %s",
			block.BlockHash(), err))
	}
	return nil
}

// checkBlockContext performs the checks on a block that depend on its
// position within the block tree. At present this verifies the declared
// height against the parent.
func checkBlockContext(block *wire.Block, parent *blockNode) error {
	if block.Height != parent.height+1 {
		return ruleError(ErrBadHeight, fmt.Sprintf(
			"block %s has declared height %d, but its parent %s has "+
				"height %d", block.BlockHash(), block.Height,
			parent.hash, parent.height))
	}
	return nil
}
