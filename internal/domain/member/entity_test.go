package member

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ficben/achievebot/internal/domain/shared"
)

func TestNew_InvalidID(t *testing.T) {
	for _, id := range []ID{0, -1} {
		_, err := New(id, "reader", time.Now())
		assert.ErrorIs(t, err, ErrInvalidID, "id %d", id)
		assert.ErrorIs(t, err, shared.ErrInvalidID, "id %d", id)
	}
}

func TestSetBooks_Negative(t *testing.T) {
	m, err := New(1, "reader", time.Now())
	require.NoError(t, err)

	err = m.SetBooks(-1)
	assert.ErrorIs(t, err, ErrNegativeCount)
	assert.ErrorIs(t, err, shared.ErrNegativeValue)

	require.NoError(t, m.SetBooks(3))
	assert.Equal(t, 3, m.Books)
}

// Доменные ошибки должны совпадать со своими родовыми видами из shared,
// чтобы верхние слои могли проверять любой уровень через errors.Is.
func TestErrors_WrapSharedKinds(t *testing.T) {
	assert.ErrorIs(t, ErrNotRegistered, shared.ErrNotFound)
	assert.ErrorIs(t, ErrInvalidID, shared.ErrInvalidID)
	assert.ErrorIs(t, ErrNegativeCount, shared.ErrNegativeValue)
}

func TestRecordMessage(t *testing.T) {
	m, err := New(1, "reader", time.Now())
	require.NoError(t, err)

	m.RecordMessage(false)
	m.RecordMessage(true)

	assert.Equal(t, 2, m.Messages)
	assert.Equal(t, 1, m.Comments)
}

func TestHandle_Display(t *testing.T) {
	assert.Equal(t, "—", Handle("").Display())
	assert.Equal(t, "@reader", Handle("reader").Display())
	assert.Equal(t, Handle("reader"), Handle("@Reader").Normalize())
}
