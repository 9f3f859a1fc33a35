package database

import (
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var _ DBTX = (pgxmock.PgxPoolIface)(nil)

// NewMockPool returns a pgxmock pool usable wherever a DBTX is expected.
// Tests should finish with ExpectationsWereMet.
func NewMockPool() (pgxmock.PgxPoolIface, error) {
	return pgxmock.NewPool()
}
