package engine

import "fmt"

// debugAsserts gates InvariantViolation checks (§7): panic in debug
// builds, no-op in release. Flip to false for a release build.
const debugAsserts = true

// assertInvariant panics with msg if ok is false and debugAsserts is
// set; otherwise it is a no-op. Used for conditions that should never
// happen given correct engine state (e.g. a dirty index out of range)
// but that a falling-sand engine should survive rather than crash on
// in production.
func assertInvariant(ok bool, format string, args ...any) {
	if !debugAsserts || ok {
		return
	}
	panic(fmt.Sprintf("invariant violation: "+format, args...))
}
