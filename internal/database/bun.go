package database

import (
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// Pool sizing for the API workload: short request-scoped queries plus the
// occasional migration at startup.
const (
	maxOpenConns = 25
	maxIdleConns = 5
)

// NewBunDB wraps an open postgres connection in a Bun DB with the pool
// settings the API runs with.
func NewBunDB(sqlDB *sql.DB) *bun.DB {
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)

	return bun.NewDB(sqlDB, pgdialect.New())
}
