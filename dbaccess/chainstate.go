package dbaccess

import (
	"github.com/pkg/errors"

	"github.com/chainforge/chainforge/database"
	"github.com/chainforge/chainforge/util/chainhash"
)

var chainStateKey = database.MakeBucket().Key([]byte("chain-state"))

// StoreChainState stores the hash of the current best-chain head. It is
// written in the same transaction that commits the block winning the head,
// so a crash can never leave the persisted head pointing at a block that
// isn't fully committed.
func StoreChainState(context Context, headHash *chainhash.Hash) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	return accessor.Put(chainStateKey, headHash[:])
}

// FetchChainState returns the persisted best-chain head hash. Returns
// ErrNotFound for a fresh database.
func FetchChainState(context Context) (*chainhash.Hash, error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, err
	}

	headBytes, err := accessor.Get(chainStateKey)
	if err != nil {
		return nil, err
	}

	headHash, err := chainhash.NewHash(headBytes)
	if err != nil {
		return nil, errors.Wrap(err, "corrupt chain state")
	}
	return headHash, nil
}
