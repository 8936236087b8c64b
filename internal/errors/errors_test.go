package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchError(t *testing.T) {
	err := &FetchError{URL: "https://example.com/feed.json", StatusCode: 503}

	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "https://example.com/feed.json")
	assert.True(t, IsFetch(err))
	assert.True(t, IsFetch(fmt.Errorf("tick: %w", err)))
	assert.False(t, IsParse(err))
}

func TestParseError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &ParseError{Cause: cause}

	assert.Contains(t, err.Error(), "unexpected end")
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsParse(err))
	assert.False(t, IsFetch(err))

	var pe *ParseError
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &pe)
	assert.Same(t, err, pe)
}

func TestTransitionError(t *testing.T) {
	cause := errors.New("interrupted")
	err := &TransitionError{Route: "deep-currents", Cause: cause}

	assert.Contains(t, err.Error(), "deep-currents")
	assert.ErrorIs(t, err, cause)
}

func TestSeverityOf(t *testing.T) {
	assert.Equal(t, SeverityFatal, SeverityOf(&MountError{Selector: "app"}))
	assert.Equal(t, SeverityRecoverable, SeverityOf(&FetchError{StatusCode: 500}))
	assert.Equal(t, SeverityRecoverable, SeverityOf(&ParseError{Cause: errors.New("x")}))
	assert.Equal(t, SeverityFatal, SeverityOf(fmt.Errorf("boot: %w", &MountError{Selector: "nav"})))
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "recoverable", SeverityRecoverable.String())
	assert.Equal(t, "fatal", SeverityFatal.String())
	assert.Equal(t, "unknown", Severity(9).String())
}
