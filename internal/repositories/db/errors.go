package dbrepo

import (
	"docshare/internal/models"
	"errors"

	"github.com/lib/pq"
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// UniqueViolation converts a postgres unique violation into *models.UniqueConstraintError.
// Any other error is returned unchanged.
func UniqueViolation(err error) error {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &models.UniqueConstraintError{
			Constraint: pgErr.Constraint,
			Err:        models.ErrUNIQUEConstraintFailed,
		}
	}
	return err
}

// MalformedInput reports whether postgres refused to parse a bound parameter,
// such as a string that is not a uuid compared against a uuid column.
func MalformedInput(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}
