//go:build property

package content

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestFingerprintProperties validates stability and formatting
// insensitivity over arbitrary flat JSON objects.
func TestFingerprintProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(4242)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	genObject := gen.MapOf(gen.Identifier(), gen.AnyString())

	properties.Property("fingerprint is stable for identical payloads", prop.ForAll(
		func(obj map[string]string) bool {
			payload, err := json.Marshal(obj)
			if err != nil {
				return false
			}
			first, err1 := Fingerprint(payload)
			second, err2 := Fingerprint(payload)
			return err1 == nil && err2 == nil && first == second
		},
		genObject,
	))

	properties.Property("fingerprint ignores formatting", prop.ForAll(
		func(obj map[string]string) bool {
			compact, err := json.Marshal(obj)
			if err != nil {
				return false
			}
			indented, err := json.MarshalIndent(obj, "", "    ")
			if err != nil {
				return false
			}
			a, err1 := Fingerprint(compact)
			b, err2 := Fingerprint(indented)
			return err1 == nil && err2 == nil && a == b
		},
		genObject,
	))

	properties.TestingRun(t)
}
