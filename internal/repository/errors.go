package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrDuplicate reports a unique constraint violation. It relies on the
// connection being opened with gorm.Config.TranslateError.
var ErrDuplicate = errors.New("duplicate record")

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
