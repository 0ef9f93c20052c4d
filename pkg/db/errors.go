package db

import "errors"

var (
	ErrNoDSN            = errors.New("db: connection url is empty")
	ErrInvalidDSN       = errors.New("db: invalid connection url")
	ErrConnectionFailed = errors.New("db: could not connect")
	ErrPingFailed       = errors.New("db: ping failed")
	ErrNoMigrations     = errors.New("db: no migrations source")
	ErrMigrationFailed  = errors.New("db: migration failed")
)
