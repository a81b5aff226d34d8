package services

import (
	"errors"

	"gin-catalog/apperrors"

	"gorm.io/gorm"
)

// translate maps repository errors onto the catalog error kinds. Unknown
// errors are returned unchanged and surface as internal failures.
func translate(err error, notFoundMsg string, conflictMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.Wrap(apperrors.NotFound, notFoundMsg, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Wrap(apperrors.Conflict, conflictMsg, err)
	default:
		return err
	}
}
