package dbaccess

import (
	"github.com/pkg/errors"

	"github.com/chainforge/chainforge/database"
	"github.com/chainforge/chainforge/database/bdb"
	"github.com/chainforge/chainforge/database/ldb"
)

// Supported database backend types.
const (
	// DbTypeLevelDB selects the goleveldb-backed database.
	DbTypeLevelDB = "leveldb"

	// DbTypeBolt selects the bbolt-backed database.
	DbTypeBolt = "bolt"
)

// SupportedDbTypes lists the backends New accepts.
var SupportedDbTypes = []string{DbTypeLevelDB, DbTypeBolt}

// DatabaseContext represents a context in which all database queries run.
type DatabaseContext struct {
	db database.Database
	*noTxContext
}

// New creates a new DatabaseContext with a database of the given type in the
// specified `path`.
func New(path string, dbType string) (*DatabaseContext, error) {
	var db database.Database
	var err error
	switch dbType {
	case DbTypeLevelDB:
		db, err = ldb.NewLevelDB(path)
	case DbTypeBolt:
		db, err = bdb.NewBoltDB(path)
	default:
		return nil, errors.Errorf("unknown database type %s", dbType)
	}
	if err != nil {
		return nil, err
	}

	return NewFromDatabase(db), nil
}

// NewFromDatabase creates a DatabaseContext over an already-open database.
// Useful for embedding applications that manage the database themselves.
func NewFromDatabase(db database.Database) *DatabaseContext {
	databaseContext := &DatabaseContext{db: db}
	databaseContext.noTxContext = &noTxContext{backend: databaseContext}
	return databaseContext
}

// Close closes the DatabaseContext's connection, if it's open.
func (ctx *DatabaseContext) Close() error {
	return ctx.db.Close()
}
