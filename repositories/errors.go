package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// normalizeError folds driver-specific unique constraint failures into
// gorm.ErrDuplicatedKey so services can test for a single error.
func normalizeError(err error) error {
	if err == nil {
		return nil
	}
	if IsDuplicate(err) {
		return gorm.ErrDuplicatedKey
	}
	return err
}

// IsDuplicate reports whether err is a unique constraint violation raised by
// any supported driver.
func IsDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
