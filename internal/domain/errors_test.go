package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_KindAndSeverity(t *testing.T) {
	err := NewValidationError("bad input")
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, SeverityError, SeverityOf(err))

	crit := NewInternalError("disk on fire", errors.New("io error"))
	assert.Equal(t, KindInternal, KindOf(crit))
	assert.Equal(t, SeverityCritical, SeverityOf(crit))
}

func TestError_SurvivesWrapping(t *testing.T) {
	inner := NewConcurrencyConflictError("unit of work already finalized")
	wrapped := fmt.Errorf("saving stock: %w", inner)

	assert.Equal(t, KindConcurrencyConflict, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindConcurrencyConflict))
	assert.Equal(t, SeverityError, SeverityOf(wrapped))
}

func TestError_Context(t *testing.T) {
	err := NewCurrencyMismatchError("add", "USD", "EUR")
	assert.Equal(t, "USD", err.Context["left"])
	assert.Equal(t, "EUR", err.Context["right"])

	err.WithContext("portfolio_id", int64(7))
	assert.Equal(t, int64(7), err.Context["portfolio_id"])
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternalError("query failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestSeverityOf_UnclassifiedIsCritical(t *testing.T) {
	assert.Equal(t, SeverityCritical, SeverityOf(errors.New("who knows")))
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "INFO", SeverityInfo.String())
	assert.Equal(t, "WARNING", SeverityWarning.String())
	assert.Equal(t, "ERROR", SeverityError.String())
	assert.Equal(t, "CRITICAL", SeverityCritical.String())
}

func TestNotFound_IsWarning(t *testing.T) {
	err := NewNotFoundError("stock", 42)
	require.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, SeverityWarning, SeverityOf(err))
}
