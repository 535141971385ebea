package dbaccess

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/chainforge/chainforge/database"
	"github.com/chainforge/chainforge/util/chainhash"
)

func setupDatabase(t *testing.T, testName string, dbType string) (*DatabaseContext, func()) {
	t.Helper()

	tmpDir, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("error creating temp dir: %s", err)
	}
	databaseContext, err := New(filepath.Join(tmpDir, "db"), dbType)
	if err != nil {
		t.Fatalf("error creating database: %s", err)
	}
	teardown := func() {
		databaseContext.Close()
		os.RemoveAll(tmpDir)
	}
	return databaseContext, teardown
}

func hashFromByte(b byte) *chainhash.Hash {
	return &chainhash.Hash{b}
}

func TestStoreAndFetchBlock(t *testing.T) {
	for _, dbType := range SupportedDbTypes {
		databaseContext, teardown := setupDatabase(t,
			"TestStoreAndFetchBlock", dbType)

		blockHash := hashFromByte(1)
		blockBytes := []byte("serialized block")

		exists, err := HasBlock(databaseContext, blockHash)
		if err != nil {
			t.Fatalf("%s: HasBlock: %s", dbType, err)
		}
		if exists {
			t.Errorf("%s: block exists before it was stored", dbType)
		}
		if _, err := FetchBlock(databaseContext, blockHash); !database.IsNotFoundError(err) {
			t.Errorf("%s: FetchBlock of missing block: got %v, want not "+
				"found", dbType, err)
		}

		err = StoreBlock(databaseContext, blockHash, 1, blockBytes)
		if err != nil {
			t.Fatalf("%s: StoreBlock: %s", dbType, err)
		}
		got, err := FetchBlock(databaseContext, blockHash)
		if err != nil {
			t.Fatalf("%s: FetchBlock: %s", dbType, err)
		}
		if string(got) != string(blockBytes) {
			t.Errorf("%s: FetchBlock returned %q, want %q", dbType, got,
				blockBytes)
		}

		// Storing the same block again is a no-op, not an error.
		err = StoreBlock(databaseContext, blockHash, 1, []byte("other bytes"))
		if err != nil {
			t.Fatalf("%s: StoreBlock of duplicate: %s", dbType, err)
		}
		got, err = FetchBlock(databaseContext, blockHash)
		if err != nil {
			t.Fatalf("%s: FetchBlock: %s", dbType, err)
		}
		if string(got) != string(blockBytes) {
			t.Errorf("%s: duplicate store overwrote the block", dbType)
		}

		teardown()
	}
}

func TestStoreAndFetchState(t *testing.T) {
	for _, dbType := range SupportedDbTypes {
		databaseContext, teardown := setupDatabase(t,
			"TestStoreAndFetchState", dbType)

		blockHash := hashFromByte(2)
		stateBytes := []byte("serialized state")

		if _, err := FetchState(databaseContext, blockHash); !database.IsNotFoundError(err) {
			t.Errorf("%s: FetchState of missing state: got %v, want not "+
				"found", dbType, err)
		}

		err := StoreState(databaseContext, blockHash, stateBytes)
		if err != nil {
			t.Fatalf("%s: StoreState: %s", dbType, err)
		}
		got, err := FetchState(databaseContext, blockHash)
		if err != nil {
			t.Fatalf("%s: FetchState: %s", dbType, err)
		}
		if string(got) != string(stateBytes) {
			t.Errorf("%s: FetchState returned %q, want %q", dbType, got,
				stateBytes)
		}

		teardown()
	}
}

func TestChainStateRoundTrip(t *testing.T) {
	for _, dbType := range SupportedDbTypes {
		databaseContext, teardown := setupDatabase(t,
			"TestChainStateRoundTrip", dbType)

		if _, err := FetchChainState(databaseContext); !database.IsNotFoundError(err) {
			t.Errorf("%s: FetchChainState on a fresh database: got %v, "+
				"want not found", dbType, err)
		}

		headHash := hashFromByte(3)
		err := StoreChainState(databaseContext, headHash)
		if err != nil {
			t.Fatalf("%s: StoreChainState: %s", dbType, err)
		}
		got, err := FetchChainState(databaseContext)
		if err != nil {
			t.Fatalf("%s: FetchChainState: %s", dbType, err)
		}
		if !got.IsEqual(headHash) {
			t.Errorf("%s: FetchChainState returned %s, want %s", dbType,
				got, headHash)
		}

		teardown()
	}
}

func TestBlockIndexCursorHeightOrder(t *testing.T) {
	for _, dbType := range SupportedDbTypes {
		databaseContext, teardown := setupDatabase(t,
			"TestBlockIndexCursorHeightOrder", dbType)

		// Store out of height order. The big-endian height prefix of the
		// index keys must still yield the blocks parents-first.
		heights := []uint64{2, 0, 300, 1}
		for i, height := range heights {
			err := StoreBlock(databaseContext, hashFromByte(byte(i+1)),
				height, []byte("block"))
			if err != nil {
				t.Fatalf("%s: StoreBlock: %s", dbType, err)
			}
		}

		cursor, err := BlockIndexCursor(databaseContext)
		if err != nil {
			t.Fatalf("%s: BlockIndexCursor: %s", dbType, err)
		}

		var prevHeight uint64
		count := 0
		for ok := cursor.First(); ok; ok = cursor.Next() {
			key, err := cursor.Key()
			if err != nil {
				t.Fatalf("%s: cursor.Key: %s", dbType, err)
			}
			height := blockIndexKeyHeight(t, key)
			if count > 0 && height < prevHeight {
				t.Errorf("%s: cursor returned height %d after %d", dbType,
					height, prevHeight)
			}
			prevHeight = height

			value, err := cursor.Value()
			if err != nil {
				t.Fatalf("%s: cursor.Value: %s", dbType, err)
			}
			if len(value) != chainhash.HashSize {
				t.Errorf("%s: index value has %d bytes, want %d", dbType,
					len(value), chainhash.HashSize)
			}
			count++
		}
		if err := cursor.Close(); err != nil {
			t.Fatalf("%s: cursor.Close: %s", dbType, err)
		}
		if count != len(heights) {
			t.Errorf("%s: cursor returned %d entries, want %d", dbType,
				count, len(heights))
		}

		teardown()
	}
}

func TestTxContextCommitAndRollback(t *testing.T) {
	databaseContext, teardown := setupDatabase(t,
		"TestTxContextCommitAndRollback", DbTypeLevelDB)
	defer teardown()

	blockHash := hashFromByte(4)

	// A rolled back transaction leaves no trace.
	dbTx, err := databaseContext.NewTx()
	if err != nil {
		t.Fatalf("NewTx: %s", err)
	}
	err = StoreBlock(dbTx, blockHash, 1, []byte("block"))
	if err != nil {
		t.Fatalf("StoreBlock: %s", err)
	}
	if err := dbTx.Rollback(); err != nil {
		t.Fatalf("Rollback: %s", err)
	}
	exists, err := HasBlock(databaseContext, blockHash)
	if err != nil {
		t.Fatalf("HasBlock: %s", err)
	}
	if exists {
		t.Error("rolled back block exists")
	}

	// A committed transaction persists all of its writes.
	dbTx, err = databaseContext.NewTx()
	if err != nil {
		t.Fatalf("NewTx: %s", err)
	}
	defer dbTx.RollbackUnlessClosed()
	err = StoreBlock(dbTx, blockHash, 1, []byte("block"))
	if err != nil {
		t.Fatalf("StoreBlock: %s", err)
	}
	err = StoreState(dbTx, blockHash, []byte("state"))
	if err != nil {
		t.Fatalf("StoreState: %s", err)
	}
	if err := dbTx.Commit(); err != nil {
		t.Fatalf("Commit: %s", err)
	}
	exists, err = HasBlock(databaseContext, blockHash)
	if err != nil {
		t.Fatalf("HasBlock: %s", err)
	}
	if !exists {
		t.Error("committed block missing")
	}
	if _, err := FetchState(databaseContext, blockHash); err != nil {
		t.Errorf("committed state missing: %s", err)
	}
}

func blockIndexKeyHeight(t *testing.T, key *database.Key) uint64 {
	t.Helper()
	suffix := key.Suffix()
	if len(suffix) != 8+chainhash.HashSize {
		t.Fatalf("block index key has %d bytes, want %d", len(suffix),
			8+chainhash.HashSize)
	}
	var height uint64
	for _, b := range suffix[:8] {
		height = height<<8 | uint64(b)
	}
	return height
}
