// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"encoding/binary"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"github.com/chainforge/chainforge/dbaccess"
	"github.com/chainforge/chainforge/util/chainhash"
	"github.com/chainforge/chainforge/wire"
)

// counterExecutor implements a minimal state machine for tests: the state
// is a little-endian uint64 counter and each block payload carries a
// little-endian uint64 delta that is added to it. The payload "fail"
// makes execution reject the block.
type counterExecutor struct{}

func (counterExecutor) Execute(block *wire.Block, parentState []byte) ([]byte, error) {
	if bytes.Equal(block.Payload, []byte("fail")) {
		return nil, errors.New("the payload said to fail")
	}
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
	newState := make([]byte, 8)
	binary.LittleEndian.PutUint64(newState, counter)
	return newState, nil
}

func counterPayload(delta uint64) []byte {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint64(payload, delta)
	return payload
}

func counterValue(t *testing.T, state []byte) uint64 {
	t.Helper()
	if len(state) != 8 {
		t.Fatalf("counterValue: expected an 8 byte state, got %d bytes",
			len(state))
	}
	return binary.LittleEndian.Uint64(state)
}

// testGenesis returns the genesis block used throughout the tests. The
// counter starts at zero.
func testGenesis() *wire.Block {
	return wire.NewBlock(&chainhash.ZeroHash, 0, counterPayload(0))
}

// childBlock returns a block extending the given parent. Distinct deltas
// produce distinct sibling hashes.
func childBlock(parent *wire.Block, delta uint64) *wire.Block {
	return wire.NewBlock(parent.BlockHash(), parent.Height+1,
		counterPayload(delta))
}

// openTestChain creates a chain instance backed by a database at the
// given path, filling in the test defaults for any config field the test
// did not set. It can be called a second time with the same path to
// simulate a restart.
func openTestChain(t *testing.T, dbPath string, config *Config) (*Chain, *dbaccess.DatabaseContext) {
	t.Helper()

	databaseContext, err := dbaccess.New(dbPath, dbaccess.DbTypeLevelDB)
	if err != nil {
		t.Fatalf("error creating database: %s", err)
	}

	if config == nil {
		config = &Config{}
	}
	config.DatabaseContext = databaseContext
	if config.Genesis == nil {
		config.Genesis = testGenesis()
		config.GenesisState = counterPayload(0)
	}
	if config.Executor == nil {
		config.Executor = counterExecutor{}
	}

	chain, err := New(config)
	if err != nil {
		databaseContext.Close()
		t.Fatalf("error creating chain: %s", err)
	}
	return chain, databaseContext
}

// chainSetup is used to create a new chain instance with the test
// defaults, backed by a database stored in a temporary directory. It
// returns the chain instance together with a teardown function the caller
// should invoke when done.
func chainSetup(t *testing.T, testName string, config *Config) (*Chain, func()) {
	t.Helper()

	tmpDir, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("error creating temp dir: %s", err)
	}

	chain, databaseContext := openTestChain(t, filepath.Join(tmpDir, "db"), config)
	teardown := func() {
		databaseContext.Close()
		os.RemoveAll(tmpDir)
	}
	return chain, teardown
}

// processBlocks feeds the given blocks to the chain in order and fails
// the test on any rejection.
func processBlocks(t *testing.T, chain *Chain, blocks ...*wire.Block) {
	t.Helper()
	for _, block := range blocks {
		isOrphan, err := chain.ProcessBlock(block, BFNone)
		if err != nil {
			t.Fatalf("ProcessBlock of %s: unexpected error: %s",
				block.BlockHash(), err)
		}
		if isOrphan {
			t.Fatalf("ProcessBlock of %s: unexpectedly an orphan",
				block.BlockHash())
		}
	}
}
