package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := NotFound("product", "p-1")

	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Contains(t, err.Message, "p-1")
	assert.True(t, stderrors.Is(err, ErrNotFound))
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("keyword must not be empty")

	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, stderrors.Is(err, ErrInvalidInput))
}

func TestInternal_WrapsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Internal(cause)

	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.True(t, stderrors.Is(err, cause))
	assert.NotContains(t, err.Message, "connection refused")
}

func TestWrap_KeepsChain(t *testing.T) {
	err := Wrap(InvalidInput("bad"), "search products")

	assert.Contains(t, err.Error(), "search products")
	assert.True(t, stderrors.Is(err, ErrInvalidInput))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("x", "1")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Wrap(InvalidInput("bad"), "ctx")))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(Unavailable("down")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(stderrors.New("unknown")))
}
