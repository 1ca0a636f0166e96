// Package assert provides internal invariant checks. A failed check is a bug in this module, not a
// caller error, so it panics instead of returning.
package assert

import "github.com/rotisserie/eris"

// ErrInvariantViolation is the panic value category raised when an internal invariant is broken,
// e.g. a column whose length no longer matches its archetype's entity list.
var ErrInvariantViolation = eris.New("internal invariant violation")
