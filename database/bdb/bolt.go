package bdb

import (
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/chainforge/chainforge/database"
)

// rootBucket is the single native bolt bucket all values live under. Logical
// bucketing is done through database.Bucket key prefixes, the same way the
// flat leveldb backend does it.
var rootBucket = []byte("chainforge")

// BoltDB defines a thin wrapper around bbolt.
type BoltDB struct {
	bdb *bolt.DB
}

// NewBoltDB opens a bolt database defined by the given path, creating it if
// needed.
func NewBoltDB(path string) (*BoltDB, error) {
	bdb, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	err = bdb.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	})
	if err != nil {
		_ = bdb.Close()
		return nil, errors.WithStack(err)
	}

	db := &BoltDB{
		bdb: bdb,
	}
	return db, nil
}

// Close closes the bolt instance.
func (db *BoltDB) Close() error {
	err := db.bdb.Close()
	return errors.WithStack(err)
}

// Put sets the value for the given key. It overwrites
// any previous value for that key.
func (db *BoltDB) Put(key *database.Key, value []byte) error {
	err := db.bdb.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(rootBucket).Put(key.Bytes(), value)
	})
	return errors.WithStack(err)
}

// Get gets the value for the given key. It returns
// ErrNotFound if the given key does not exist.
func (db *BoltDB) Get(key *database.Key) ([]byte, error) {
	var data []byte
	err := db.bdb.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(rootBucket).Get(key.Bytes())
		if value == nil {
			return errors.Wrapf(database.ErrNotFound,
				"key %s not found", key)
		}
		// The returned slice is only valid for the lifetime of the bolt
		// transaction.
		data = make([]byte, len(value))
		copy(data, value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Has returns true if the database does contain the
// given key.
func (db *BoltDB) Has(key *database.Key) (bool, error) {
	var exists bool
	err := db.bdb.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(rootBucket).Get(key.Bytes()) != nil
		return nil
	})
	if err != nil {
		return false, errors.WithStack(err)
	}
	return exists, nil
}

// Delete deletes the value for the given key. Will not
// return an error if the key doesn't exist.
func (db *BoltDB) Delete(key *database.Key) error {
	err := db.bdb.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(rootBucket).Delete(key.Bytes())
	})
	return errors.WithStack(err)
}

// Cursor begins a new cursor over the given bucket.
func (db *BoltDB) Cursor(bucket *database.Bucket) (database.Cursor, error) {
	tx, err := db.bdb.Begin(false)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return newBoltCursor(tx, bucket, true), nil
}
