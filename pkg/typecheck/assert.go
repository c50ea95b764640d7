package typecheck

import (
	"testing"

	"github.com/funvibe/funtype/pkg/descriptor"
	"github.com/funvibe/funtype/pkg/value"
)

// Assert validates v against expected and fails the test with the
// failure message on mismatch. It is the test-suite face of Validate.
func Assert(tb testing.TB, v value.Value, expected descriptor.Descriptor) {
	tb.Helper()
	if err := Validate(v, expected); err != nil {
		tb.Fatal(err)
	}
}
