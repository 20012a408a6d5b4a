package llm

import (
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestClassifyErrorProperty checks three properties of classifyError
// across generated inputs rather than just the fixed cases in
// client_test.go: a nil error is never node-local, alphabetic text with no
// known critical substring is not node-local, and wrapping any of the known
// critical substrings in arbitrary surrounding text is always classified as
// node-local.
func TestClassifyErrorProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("nil error is never node-local", prop.ForAll(
		func(_ int) bool {
			return !classifyError(nil)
		},
		gen.Int(),
	))

	properties.Property("arbitrary text with no critical substring is not node-local", prop.ForAll(
		func(s string) bool {
			for _, needle := range criticalErrors {
				if strings.Contains(strings.ToLower(s), needle) {
					return true // skip: s happens to contain a critical substring
				}
			}
			return !classifyError(errors.New(s))
		},
		gen.AlphaString(),
	))

	properties.Property("critical substring embedded in arbitrary prefix/suffix text is node-local", prop.ForAll(
		func(prefix, suffix string, idx int) bool {
			needle := criticalErrors[idx%len(criticalErrors)]
			return classifyError(errors.New(prefix + needle + suffix))
		},
		gen.AlphaString(), gen.AlphaString(), gen.IntRange(0, len(criticalErrors)-1),
	))
}
