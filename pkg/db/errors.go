package db

import "errors"

var (
	ErrUnsupportedDriver        = errors.New("db: unsupported driver")
	ErrFailedToParseDBConfig    = errors.New("db: failed to parse database configuration")
	ErrFailedToOpenDBConnection = errors.New("db: failed to open database connection")
	ErrDuplicateConnection      = errors.New("db: connection already exists")
	ErrNoConnection             = errors.New("db: no connection configured")
	ErrUnknownConnection        = errors.New("db: unknown connection")
	ErrUnknownRepository        = errors.New("db: unknown repository")
	ErrNoRows                   = errors.New("db: no rows in result set")
	ErrHealthcheckFailed        = errors.New("db: healthcheck failed")
	ErrSetDialect               = errors.New("db migrator: failed to set dialect")
	ErrApplyMigrations          = errors.New("db migrator: failed to apply migrations")
)
