package database

// Database defines the interface of a database that can begin transactions
// and close itself.
//
// Important: this is not part of the DataAccessor interface because the
// Transaction interface includes it. Were we to merge them, the "accessor"
// abstraction would include the ability to open transactions within
// transactions, which is not supported by the backends.
type Database interface {
	DataAccessor

	// Begin begins a new database transaction.
	Begin() (Transaction, error)

	// Close closes the database.
	Close() error
}
