package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(KindNotFound, "thing %d missing", 7)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindValidation))

	// kind survives wrapping with %w
	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, KindNotFound, KindOf(wrapped))

	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := Wrap(KindInternal, cause, "saving record")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "saving record")
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindInvalidQuantity, http.StatusBadRequest},
		{KindInvalidIdentifierSet, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindInsufficientStock, http.StatusConflict},
		{KindPreconditionFailed, http.StatusConflict},
		{KindDuplicateIdentifier, http.StatusConflict},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(New(tc.kind, "x")), string(tc.kind))
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}
