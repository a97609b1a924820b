package database

import (
	"github.com/formflow/formflow-backend/pkg/errors"
	"github.com/lib/pq"
)

// constraintDetails maps named CHECK constraints of user_corrections to field messages
var constraintDetails = map[string]map[string]string{
	"user_corrections_field_valid":   {"field": "must be one of the eight form fields"},
	"user_corrections_values_differ": {"corrected": "must differ from original"},
}

// MapPQError translates a PostgreSQL error anywhere in err's chain into an
// AppError. It returns nil for anything it does not recognise.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code.Name() {
	case "check_violation":
		if details, ok := constraintDetails[pqErr.Constraint]; ok {
			return errors.Wrap(err, errors.Validation(details))
		}
		return errors.Wrap(err, errors.BadRequest("data validation failed: "+pqErr.Constraint))
	case "unique_violation":
		return errors.Wrap(err, errors.Conflict("a record with these values already exists"))
	case "not_null_violation":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Wrap(err, errors.Validation(map[string]string{col: "must not be empty"}))
	case "undefined_table":
		// schema was never applied
		return errors.Wrap(err, errors.Unavailable("feedback storage is not initialised"))
	default:
		return nil
	}
}
