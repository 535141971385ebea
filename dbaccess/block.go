package dbaccess

import (
	"encoding/binary"

	"github.com/chainforge/chainforge/database"
	"github.com/chainforge/chainforge/util/chainhash"
)

var (
	blocksBucket     = database.MakeBucket([]byte("blocks"))
	blockIndexBucket = database.MakeBucket([]byte("block-index"))
)

func blockKey(hash *chainhash.Hash) *database.Key {
	return blocksBucket.Key(hash[:])
}

// blockIndexKey builds a key whose lexicographic order is ascending block
// height, so a cursor over the block-index bucket yields parents before
// children.
func blockIndexKey(blockHash *chainhash.Hash, height uint64) *database.Key {
	keySuffix := make([]byte, 8+chainhash.HashSize)
	binary.BigEndian.PutUint64(keySuffix[:8], height)
	copy(keySuffix[8:], blockHash[:])
	return blockIndexBucket.Key(keySuffix)
}

// StoreBlock stores the given block bytes keyed by the block hash, and
// registers the block in the height-ordered block index. Storing a hash that
// already exists is a no-op, not an error.
func StoreBlock(context Context, blockHash *chainhash.Hash, height uint64, blockBytes []byte) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	exists, err := accessor.Has(blockKey(blockHash))
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = accessor.Put(blockKey(blockHash), blockBytes)
	if err != nil {
		return err
	}

	return accessor.Put(blockIndexKey(blockHash, height), blockHash[:])
}

// HasBlock returns whether the block of the given hash has been previously
// inserted into the database.
func HasBlock(context Context, blockHash *chainhash.Hash) (bool, error) {
	accessor, err := context.accessor()
	if err != nil {
		return false, err
	}

	return accessor.Has(blockKey(blockHash))
}

// FetchBlock returns the block bytes of the given hash. Returns ErrNotFound
// if the block had not been previously inserted into the database.
func FetchBlock(context Context, blockHash *chainhash.Hash) ([]byte, error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, err
	}

	return accessor.Get(blockKey(blockHash))
}

// BlockIndexCursor opens a cursor over the block index. Iterating it yields
// block hashes in ascending height order, which guarantees that every
// block's parent is yielded before the block itself.
func BlockIndexCursor(context Context) (database.Cursor, error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, err
	}

	return accessor.Cursor(blockIndexBucket)
}
