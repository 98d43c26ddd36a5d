package dbconn

import "errors"

var (
	// ErrUnknownDatabase is returned when a name was never registered.
	ErrUnknownDatabase = errors.New("database is not registered")

	// ErrUnsupportedEngine is returned for engines other than postgres and sqlite.
	ErrUnsupportedEngine = errors.New("unsupported database engine")

	// ErrEngineMismatch is returned when a connection of the wrong kind is requested.
	ErrEngineMismatch = errors.New("database engine mismatch")
)
