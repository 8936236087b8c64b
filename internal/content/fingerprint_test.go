package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_FormattingInsensitive(t *testing.T) {
	a := []byte(`{"meta":{"title":"T","defaultRoute":"home"},"articles":[]}`)
	b := []byte(`{
		"articles": [],
		"meta": {
			"defaultRoute": "home",
			"title": "T"
		}
	}`)

	fpA, err := Fingerprint(a)
	require.NoError(t, err)
	fpB, err := Fingerprint(b)
	require.NoError(t, err)

	assert.Equal(t, fpA, fpB, "key order and whitespace must not affect the fingerprint")
}

func TestFingerprint_ContentSensitive(t *testing.T) {
	a := []byte(`{"meta":{"title":"T"},"articles":[]}`)
	b := []byte(`{"meta":{"title":"T2"},"articles":[]}`)

	fpA, err := Fingerprint(a)
	require.NoError(t, err)
	fpB, err := Fingerprint(b)
	require.NoError(t, err)

	assert.NotEqual(t, fpA, fpB)
}

func TestFingerprint_Stable(t *testing.T) {
	payload := []byte(`{"articles":[{"id":"x","title":"X"}]}`)

	first, err := Fingerprint(payload)
	require.NoError(t, err)
	second, err := Fingerprint(payload)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFingerprint_InvalidPayload(t *testing.T) {
	_, err := Fingerprint([]byte(`{"meta": `))
	assert.Error(t, err)
}
