package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Storage level failures surfaced to services.
var (
	// ErrDuplicate signals a unique index violation.
	ErrDuplicate = errors.New("duplicate record")
	// ErrReferenced signals a foreign key violation.
	ErrReferenced = errors.New("record is referenced")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// translate maps driver errors onto repository sentinels while keeping the
// original error in the chain.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrDuplicate, pqErr.Constraint)
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrReferenced, pqErr.Constraint)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
