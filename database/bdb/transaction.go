package bdb

import (
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/chainforge/chainforge/database"
)

// BoltTransaction wraps a native writable bolt transaction. Unlike the
// leveldb backend's batch-based transactions, reads within a bolt
// transaction do observe its own writes.
type BoltTransaction struct {
	btx      *bolt.Tx
	isClosed bool
}

// Begin begins a new transaction.
func (db *BoltDB) Begin() (database.Transaction, error) {
	btx, err := db.bdb.Begin(true)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	transaction := &BoltTransaction{
		btx: btx,
	}
	return transaction, nil
}

// Commit commits whatever changes were made to the database
// within this transaction.
func (tx *BoltTransaction) Commit() error {
	if tx.isClosed {
		return errors.New("cannot commit a closed transaction")
	}

	tx.isClosed = true
	return errors.WithStack(tx.btx.Commit())
}

// Rollback rolls back whatever changes were made to the
// database within this transaction.
func (tx *BoltTransaction) Rollback() error {
	if tx.isClosed {
		return errors.New("cannot rollback a closed transaction")
	}

	tx.isClosed = true
	return errors.WithStack(tx.btx.Rollback())
}

// RollbackUnlessClosed rolls back changes that were made to
// the database within the transaction, unless the transaction
// had already been closed using either Rollback or Commit.
func (tx *BoltTransaction) RollbackUnlessClosed() error {
	if tx.isClosed {
		return nil
	}
	return tx.Rollback()
}

// Put sets the value for the given key. It overwrites
// any previous value for that key.
func (tx *BoltTransaction) Put(key *database.Key, value []byte) error {
	if tx.isClosed {
		return errors.New("cannot put into a closed transaction")
	}

	err := tx.btx.Bucket(rootBucket).Put(key.Bytes(), value)
	return errors.WithStack(err)
}

// Get gets the value for the given key. It returns
// ErrNotFound if the given key does not exist.
func (tx *BoltTransaction) Get(key *database.Key) ([]byte, error) {
	if tx.isClosed {
		return nil, errors.New("cannot get from a closed transaction")
	}

	value := tx.btx.Bucket(rootBucket).Get(key.Bytes())
	if value == nil {
		return nil, errors.Wrapf(database.ErrNotFound,
			"key %s not found", key)
	}
	data := make([]byte, len(value))
	copy(data, value)
	return data, nil
}

// Has returns true if the database does contain the
// given key.
func (tx *BoltTransaction) Has(key *database.Key) (bool, error) {
	if tx.isClosed {
		return false, errors.New("cannot has from a closed transaction")
	}

	return tx.btx.Bucket(rootBucket).Get(key.Bytes()) != nil, nil
}

// Delete deletes the value for the given key. Will not
// return an error if the key doesn't exist.
func (tx *BoltTransaction) Delete(key *database.Key) error {
	if tx.isClosed {
		return errors.New("cannot delete from a closed transaction")
	}

	err := tx.btx.Bucket(rootBucket).Delete(key.Bytes())
	return errors.WithStack(err)
}

// Cursor begins a new cursor over the given bucket.
func (tx *BoltTransaction) Cursor(bucket *database.Bucket) (database.Cursor, error) {
	if tx.isClosed {
		return nil, errors.New("cannot open a cursor from a closed transaction")
	}

	return newBoltCursor(tx.btx, bucket, false), nil
}
