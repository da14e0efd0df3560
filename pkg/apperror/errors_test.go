package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesByKind(t *testing.T) {
	err := NewInsufficientStockError("only 2 left")

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrInsufficientCredit))
	assert.Equal(t, http.StatusConflict, err.Code)
}

func TestIs_ThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("record sale: %w", NewNotFoundError("Product"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsKind(err, KindNotFound))
	assert.Equal(t, "Product not found", GetAppError(err).Message)
}

func TestStoreCommitFailure_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStoreCommitFailure(cause)

	assert.True(t, errors.Is(err, ErrStoreCommitFailure))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, http.StatusServiceUnavailable, err.Code)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGetAppError_PlainErrorBecomesInternal(t *testing.T) {
	appErr := GetAppError(errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Equal(t, KindInternal, appErr.Kind)
	assert.NotContains(t, appErr.Message, "boom")
}

func TestNewAppError_DerivesKindFromStatus(t *testing.T) {
	assert.Equal(t, KindForbidden, NewAppError(http.StatusForbidden, "nope").Kind)
	assert.Equal(t, KindInternal, NewAppError(http.StatusTeapot, "tea").Kind)
}
