package bdb

import (
	"bytes"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/chainforge/chainforge/database"
)

// BoltCursor is a thin wrapper around native bolt cursors, constrained to a
// single logical bucket prefix.
type BoltCursor struct {
	btx    *bolt.Tx
	cursor *bolt.Cursor
	bucket *database.Bucket

	// ownsTransaction is set when the cursor was opened directly on the
	// database, in which case closing the cursor also ends the read
	// transaction that backs it.
	ownsTransaction bool

	currentKey   []byte
	currentValue []byte
	isClosed     bool
}

func newBoltCursor(btx *bolt.Tx, bucket *database.Bucket, ownsTransaction bool) *BoltCursor {
	return &BoltCursor{
		btx:             btx,
		cursor:          btx.Bucket(rootBucket).Cursor(),
		bucket:          bucket,
		ownsTransaction: ownsTransaction,
	}
}

func (c *BoltCursor) set(key, value []byte) bool {
	if key == nil || !bytes.HasPrefix(key, c.bucket.Path()) {
		c.currentKey = nil
		c.currentValue = nil
		return false
	}
	c.currentKey = key
	c.currentValue = value
	return true
}

// First moves the iterator to the first key/value pair. It returns false if
// such a pair does not exist. Panics if the cursor is closed.
func (c *BoltCursor) First() bool {
	if c.isClosed {
		panic("cannot call first on a closed cursor")
	}
	return c.set(c.cursor.Seek(c.bucket.Path()))
}

// Next moves the iterator to the next key/value pair. It returns whether the
// iterator is exhausted. Panics if the cursor is closed.
func (c *BoltCursor) Next() bool {
	if c.isClosed {
		panic("cannot call next on a closed cursor")
	}
	if c.currentKey == nil {
		return false
	}
	return c.set(c.cursor.Next())
}

// Key returns the key of the current key/value pair, or ErrNotFound if done.
// The bucket prefix is removed, so the key contains only the suffix.
func (c *BoltCursor) Key() (*database.Key, error) {
	if c.isClosed {
		return nil, errors.New("cannot get the key of a closed cursor")
	}
	if c.currentKey == nil {
		return nil, errors.Wrapf(database.ErrNotFound,
			"cursor on bucket %s exhausted", c.bucket.Path())
	}
	suffix := bytes.TrimPrefix(c.currentKey, c.bucket.Path())
	suffixCopy := make([]byte, len(suffix))
	copy(suffixCopy, suffix)
	return c.bucket.Key(suffixCopy), nil
}

// Value returns the value of the current key/value pair, or ErrNotFound if
// done.
func (c *BoltCursor) Value() ([]byte, error) {
	if c.isClosed {
		return nil, errors.New("cannot get the value of a closed cursor")
	}
	if c.currentKey == nil {
		return nil, errors.Wrapf(database.ErrNotFound,
			"cursor on bucket %s exhausted", c.bucket.Path())
	}
	valueCopy := make([]byte, len(c.currentValue))
	copy(valueCopy, c.currentValue)
	return valueCopy, nil
}

// Close releases the cursor and, if the cursor owns its backing transaction,
// ends it.
func (c *BoltCursor) Close() error {
	if c.isClosed {
		return errors.New("cannot close an already closed cursor")
	}
	c.isClosed = true
	c.currentKey = nil
	c.currentValue = nil
	if c.ownsTransaction {
		return errors.WithStack(c.btx.Rollback())
	}
	return nil
}
