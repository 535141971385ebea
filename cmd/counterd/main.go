// Copyright (c) 2013-2018 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/chainforge/chainforge/blockchain"
	"github.com/chainforge/chainforge/dbaccess"
	"github.com/chainforge/chainforge/logger"
	"github.com/chainforge/chainforge/signal"
	"github.com/chainforge/chainforge/util/chainhash"
	"github.com/chainforge/chainforge/util/panics"
	"github.com/chainforge/chainforge/version"
	"github.com/chainforge/chainforge/wire"
)

func main() {
	defer panics.HandlePanic(log, nil)

	err := counterdMain()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func counterdMain() error {
	interrupt := signal.InterruptListener()

	cfg, err := parseConfig()
	if err != nil {
		return err
	}
	defer logger.Close()
	log.Infof("Version %s", version.Version())

	databaseContext, err := dbaccess.New(filepath.Join(cfg.DataDir, "db"),
		cfg.DbType)
	if err != nil {
		return err
	}
	defer func() {
		log.Infof("Gracefully shutting down the database...")
		err := databaseContext.Close()
		if err != nil {
			log.Errorf("Error closing the database: %s", err)
		}
	}()

	genesis := wire.NewBlock(&chainhash.ZeroHash, 0, encodeCounter(0))
	chain, err := blockchain.New(&blockchain.Config{
		DatabaseContext: databaseContext,
		Genesis:         genesis,
		GenesisState:    encodeCounter(0),
		Executor:        counterExecutor{},
	})
	if err != nil {
		return err
	}
	chain.Subscribe(logNotification)

	if signal.InterruptRequested(interrupt) {
		return nil
	}

	stopProducer := make(chan struct{})
	producerDone := make(chan struct{})
	spawn(func() {
		defer close(producerDone)
		produceBlocks(chain, cfg, stopProducer)
	})

	<-interrupt
	close(stopProducer)
	<-producerDone
	return nil
}

// produceBlocks extends the current best chain with a block carrying a
// random counter delta every block interval, until stop is closed.
func produceBlocks(chain *blockchain.Chain, cfg *configFlags, stop chan struct{}) {
	random := rand.New(rand.NewSource(time.Now().UnixNano()))
	ticker := time.NewTicker(cfg.BlockInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		headHash, headHeight := chain.BestHead()
		delta := uint64(random.Int63n(int64(cfg.MaxDelta))) + 1
		block := wire.NewBlock(&headHash, headHeight+1, encodeCounter(delta))

		isOrphan, err := chain.ProcessBlock(block, blockchain.BFNone)
		if err != nil {
			log.Errorf("Error processing produced block %s: %s",
				block.BlockHash(), err)
			continue
		}
		if isOrphan {
			// Can't happen for blocks built on the current head.
			log.Warnf("Produced block %s was orphaned", block.BlockHash())
		}

		state, err := chain.StateByHash(block.BlockHash())
		if err != nil {
			log.Errorf("Error fetching the state of produced block %s: %s",
				block.BlockHash(), err)
			continue
		}
		log.Infof("Produced block %s at height %d, counter is now %d",
			block.BlockHash(), block.Height, decodeCounter(state))
	}
}

func logNotification(notification *blockchain.Notification) {
	switch notification.Type {
	case blockchain.NTBlockAdded:
		data := notification.Data.(*blockchain.BlockAddedNotificationData)
		log.Debugf("Block %s added at height %d (unorphaned: %t)",
			data.Block.BlockHash(), data.Block.Height, data.WasUnorphaned)

	case blockchain.NTChainChanged:
		data := notification.Data.(*blockchain.ChainChangedNotificationData)
		if len(data.DetachedChainBlockHashes) == 0 {
			return
		}
		log.Infof("Chain reorganized from %s to %s: %d block(s) detached, "+
			"%d block(s) attached", data.OldHeadHash, data.NewHeadHash,
			len(data.DetachedChainBlockHashes),
			len(data.AttachedChainBlockHashes))
	}
}
