package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("assessment %d not found", 3)))
	assert.Equal(t, KindValidation, KindOf(fmt.Errorf("wrapped: %w", Validation("bad"))))
	assert.Equal(t, KindUnexpected, KindOf(errors.New("plain")))
	assert.True(t, Is(Unauthorized("no"), KindUnauthorized))
	assert.False(t, Is(nil, KindNotFound))
}

func TestUnexpectedKeepsClassifiedErrors(t *testing.T) {
	nf := NotFound("user not found")
	assert.Same(t, nf, Unexpected("failed to load", nf))

	cause := errors.New("connection reset")
	err := Unexpected("failed to load user", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load user: connection reset", err.Error())
	assert.Equal(t, "failed to load user", PublicMessage(err))
	assert.Equal(t, "internal server error", PublicMessage(cause))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, KindNotFound.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, KindValidation.HTTPStatus())
	assert.Equal(t, http.StatusForbidden, KindUnauthorized.HTTPStatus())
	assert.Equal(t, http.StatusConflict, KindConflict.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, KindUnexpected.HTTPStatus())
}
