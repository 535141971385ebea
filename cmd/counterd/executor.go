// Copyright (c) 2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/chainforge/chainforge/wire"
)

// counterExecutor implements blockchain.Executor for the demo daemon.
// The state is a little-endian uint64 counter and each block payload
// carries a little-endian uint64 delta that is added to it.
type counterExecutor struct{}

func (counterExecutor) Execute(block *wire.Block, parentState []byte) ([]byte, error) {
	if len(block.Payload) != 8 {
		return nil, errors.Errorf("expected an 8 byte payload, got %d bytes",
			len(block.Payload))
	}
	if len(parentState) != 8 {
		return nil, errors.Errorf("expected an 8 byte parent state, got %d "+
			"bytes", len(parentState))
	}

	counter := binary.LittleEndian.Uint64(parentState)
	counter += binary.LittleEndian.Uint64(block.Payload)
	return encodeCounter(counter), nil
}

func encodeCounter(counter uint64) []byte {
	encoded := make([]byte, 8)
	binary.LittleEndian.PutUint64(encoded, counter)
	return encoded
}

func decodeCounter(state []byte) uint64 {
	return binary.LittleEndian.Uint64(state)
}
