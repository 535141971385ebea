// Copyright (c) 2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain_test

import (
	"encoding/binary"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/chainforge/chainforge/blockchain"
	"github.com/chainforge/chainforge/dbaccess"
	"github.com/chainforge/chainforge/util/chainhash"
	"github.com/chainforge/chainforge/wire"
)

// additionExecutor keeps a running uint64 sum: the state is the
// little-endian encoded sum and each block payload carries a
// little-endian uint64 to add.
type additionExecutor struct{}

func (additionExecutor) Execute(block *wire.Block, parentState []byte) ([]byte, error) {
	sum := binary.LittleEndian.Uint64(parentState) +
		binary.LittleEndian.Uint64(block.Payload)
	newState := make([]byte, 8)
	binary.LittleEndian.PutUint64(newState, sum)
	return newState, nil
}

func encodeUint64(value uint64) []byte {
	encoded := make([]byte, 8)
	binary.LittleEndian.PutUint64(encoded, value)
	return encoded
}

// This example demonstrates creating a chain with a custom executor and
// importing a couple of blocks into it.
func Example() {
	tmpDir, err := ioutil.TempDir("", "example-chain")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(tmpDir)

	databaseContext, err := dbaccess.New(filepath.Join(tmpDir, "db"),
		dbaccess.DbTypeLevelDB)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer databaseContext.Close()

	genesis := wire.NewBlock(&chainhash.ZeroHash, 0, nil)
	chain, err := blockchain.New(&blockchain.Config{
		DatabaseContext: databaseContext,
		Genesis:         genesis,
		GenesisState:    encodeUint64(0),
		Executor:        additionExecutor{},
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	blockA := wire.NewBlock(genesis.BlockHash(), 1, encodeUint64(30))
	blockB := wire.NewBlock(blockA.BlockHash(), 2, encodeUint64(12))
	for _, block := range []*wire.Block{blockA, blockB} {
		_, err := chain.ProcessBlock(block, blockchain.BFNone)
		if err != nil {
			fmt.Println(err)
			return
		}
	}

	state, err := chain.State()
	if err != nil {
		fmt.Println(err)
		return
	}
	_, height := chain.BestHead()
	fmt.Println("height:", height, "sum:", binary.LittleEndian.Uint64(state))

	// Output:
	// height: 2 sum: 42
}
