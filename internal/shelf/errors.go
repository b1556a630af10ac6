package shelf

import "fmt"

// ValidationError reports user-supplied dates or page numbers that fail
// the shelf intake rules. It is caught at the form/flag boundary and never
// reaches the loader or storage layers.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IntegrityError reports a shelf invariant violation, e.g. a move whose
// second persist phase failed after the first succeeded. It is surfaced,
// never silently masked.
type IntegrityError struct {
	BookID string
	Op     string
	Err    error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("shelf integrity violated during %s of %s: %v", e.Op, e.BookID, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }
