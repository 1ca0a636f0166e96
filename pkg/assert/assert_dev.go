//go:build !release

package assert

import "github.com/rotisserie/eris"

// That panics with an error wrapping ErrInvariantViolation when cond is false.
func That(cond bool, format string, args ...any) { //nolint:goprintffuncname // it's ok
	if !cond {
		panic(eris.Wrapf(ErrInvariantViolation, format, args...))
	}
}
