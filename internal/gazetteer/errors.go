package gazetteer

import "errors"

// Sentinel errors for gazetteer data files.
var (
	// ErrInvalidRecord indicates a data row with missing or malformed fields.
	ErrInvalidRecord = errors.New("invalid gazetteer record")
	// ErrEmptyTable indicates a data file contained no usable rows.
	ErrEmptyTable = errors.New("empty gazetteer table")
)
