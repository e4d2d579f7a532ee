package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	e := NewDomainError("member", "SetBooks", ErrNotFound, "member 42")
	assert.Equal(t, "member.SetBooks: member 42", e.Error())

	w := WrapError("member", "Register", errors.New("connection refused"), "member 42")
	assert.Equal(t, "member.Register: member 42: connection refused", w.Error())
}

func TestDomainError_IsMatchesKind(t *testing.T) {
	e := NewDomainError("member", "SetBooks", ErrNotFound, "member 42")
	assert.ErrorIs(t, e, ErrNotFound)
	assert.NotErrorIs(t, e, ErrUnauthorized)
}

func TestDomainError_IsMatchesWrappedChain(t *testing.T) {
	// Когда Kind сам обёртка над сентинелом, совпадать должны оба уровня.
	specific := fmt.Errorf("member: not registered: %w", ErrNotFound)
	e := NewDomainError("member", "UpdateRanks", specific, "member 7")
	assert.ErrorIs(t, e, specific)
	assert.ErrorIs(t, e, ErrNotFound)
}

func TestDomainError_UnwrapPrefersUnderlying(t *testing.T) {
	cause := errors.New("timeout")
	w := WrapError("achievement", "Award", cause, "award insert")
	assert.Equal(t, cause, errors.Unwrap(w))
	assert.ErrorIs(t, w, cause)

	e := NewDomainError("wizard", "Save", ErrServiceUnavailable, "session 1")
	assert.Equal(t, ErrServiceUnavailable, errors.Unwrap(e))
}
