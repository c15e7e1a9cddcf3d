package store

import "errors"

var (
	// ErrDatabaseNotFound is returned when a (database, table) pair names
	// a database that was never created.
	ErrDatabaseNotFound = errors.New("store: database not found")
	// ErrTableNotFound is returned when a table was never created in an
	// otherwise-known database.
	ErrTableNotFound = errors.New("store: table not found")
	// ErrKeyExists is returned by Insert when the supplied key collides
	// with an existing row.
	ErrKeyExists = errors.New("store: primary key already exists")
)
