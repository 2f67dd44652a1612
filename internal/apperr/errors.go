package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// Spreadsheet import rejection reasons. Each maps to a distinct
	// user-facing message; an import that fails with any of these has
	// not touched the event collection.
	ErrInsufficientData = errors.New("insufficient data")
	ErrMissingColumns   = errors.New("missing required fields")
	ErrNoValidRows      = errors.New("no valid event records found")
)
