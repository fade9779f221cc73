package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorFormat(t *testing.T) {
	err := New(ErrCodeAcqUpstream, "competitors endpoint returned 503")
	assert.Equal(t, "[ACQ_003] competitors endpoint returned 503", err.Error())

	withDetail := err.WithDetail("idea=ai-legal-assistant")
	assert.Equal(t, "[ACQ_003] competitors endpoint returned 503: idea=ai-legal-assistant", withDetail.Error())
	// The receiver must not be mutated.
	assert.Empty(t, err.Detail)
}

func TestWrapPreservesChain(t *testing.T) {
	base := stderrors.New("connection reset by peer")
	wrapped := Wrap(base, ErrCodeAcqNetwork, "fetching demographics")

	require.NotNil(t, wrapped)
	assert.True(t, stderrors.Is(wrapped, base))
	assert.Equal(t, ErrCodeAcqNetwork, GetCode(wrapped))
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "should vanish"))
}

func TestWrapUnknownCodeKeepsOriginal(t *testing.T) {
	inner := NewRateLimited("throttled")
	wrapped := Wrap(inner, CodeUnknown, "adding context")
	assert.Equal(t, ErrCodeAcqRateLimited, wrapped.Code)
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"typed rate limit", NewRateLimited("throttled"), true},
		{"common 429 code", New(ErrCodeTooManyRequests, "slow down"), true},
		{"textual marker", stderrors.New("upstream said: Rate Limit exceeded"), true},
		{"textual marker hyphenated", fmt.Errorf("got rate-limited"), true},
		{"upstream failure", NewUpstream("HTTP 500"), false},
		{"network failure", NewNetwork("dial tcp: timeout"), false},
		{"wrapped rate limit", Wrap(NewRateLimited("inner"), ErrCodeExternalService, "outer"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimited(tt.err))
		})
	}
}

func TestIsCodeTraversesChain(t *testing.T) {
	inner := New(ErrCodeRecordMissingCoordinates, "no coordinates for record")
	outer := fmt.Errorf("building pins: %w", inner)
	assert.True(t, IsCode(outer, ErrCodeRecordMissingCoordinates))
	assert.False(t, IsCode(outer, ErrCodeAcqNetwork))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, ErrCodeValidation, GetCode(NewValidation("idea must be at least %d characters", 3)))
}
