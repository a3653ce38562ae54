package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	domerr "github.com/opre/ops/pkg/domain/errors"
)

// requested row is missing.
type Missing struct {
	Table    string
	Identity string
}

var _ error = Missing{}

func (m Missing) Error() string {
	return fmt.Sprintf("%s is not found in %s", m.Identity, m.Table)
}

func (m Missing) Unwrap() error {
	return domerr.ErrMissing
}

// requested row is found too much.
type TooMuch struct {
	Table    string
	Identity string
	Expected int
}

var _ error = TooMuch{}

func (t TooMuch) Error() string {
	return fmt.Sprintf(
		"%s is found in %s more than %d times",
		t.Identity, t.Table, t.Expected,
	)
}

func (t TooMuch) Unwrap() error {
	return domerr.ErrTooMuch
}

// Constraint is a violated table constraint, translated into a domain error.
type Constraint struct {
	Name   string
	Table  string
	Detail string
	kind   error
	cause  error
}

func (c Constraint) Error() string {
	return fmt.Sprintf(
		"%s: constraint %s on %s: %s", c.kind, c.Name, c.Table, c.Detail,
	)
}

func (c Constraint) Unwrap() []error {
	return []error{c.kind, c.cause}
}

// Translate converts constraint violations reported by postgres into domain errors.
//
// - unique violation -> ErrConflict
//
// - foreign key violation -> ErrMissing (the referenced row does not exist)
//
// - check violation -> ErrValidation
//
// Other errors are returned as is.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	pgerr := new(pgconn.PgError)
	if !errors.As(err, &pgerr) {
		return err
	}

	var kind error
	switch pgerr.Code {
	case pgerrcode.UniqueViolation:
		kind = domerr.ErrConflict
	case pgerrcode.ForeignKeyViolation:
		kind = domerr.ErrMissing
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		kind = domerr.ErrValidation
	default:
		return err
	}
	return Constraint{
		Name:   pgerr.ConstraintName,
		Table:  pgerr.TableName,
		Detail: pgerr.Detail,
		kind:   kind,
		cause:  err,
	}
}
