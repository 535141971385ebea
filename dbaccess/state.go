package dbaccess

import (
	"github.com/chainforge/chainforge/database"
	"github.com/chainforge/chainforge/util/chainhash"
)

var statesBucket = database.MakeBucket([]byte("states"))

func stateKey(blockHash *chainhash.Hash) *database.Key {
	return statesBucket.Key(blockHash[:])
}

// StoreState associates the given state bytes with a block hash. States are
// immutable, so storing a hash that already has a state is a no-op.
func StoreState(context Context, blockHash *chainhash.Hash, stateBytes []byte) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	exists, err := accessor.Has(stateKey(blockHash))
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return accessor.Put(stateKey(blockHash), stateBytes)
}

// HasState returns whether a state is associated with the given block hash.
func HasState(context Context, blockHash *chainhash.Hash) (bool, error) {
	accessor, err := context.accessor()
	if err != nil {
		return false, err
	}

	return accessor.Has(stateKey(blockHash))
}

// FetchState returns the state bytes associated with the given block hash.
// Returns ErrNotFound if no state is associated with it.
func FetchState(context Context, blockHash *chainhash.Hash) ([]byte, error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, err
	}

	return accessor.Get(stateKey(blockHash))
}
