package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error wins", New(ErrInternal, http.StatusTeapot, "x"), http.StatusTeapot},
		{"unknown category", fmt.Errorf("lookup: %w", ErrUnknownCategory), http.StatusNotFound},
		{"missing field", ErrMissingRequiredField, http.StatusBadRequest},
		{"invalid kind", InvalidKind("tokenize", 42), http.StatusBadRequest},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests},
		{"timeout", ErrTimeout, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusCode(tt.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrMissingRequiredField, http.StatusBadRequest, "field %q is mandatory", "Title")
	assert.ErrorIs(t, err, ErrMissingRequiredField)
	assert.Equal(t, `missing required field: field "Title" is mandatory`, err.Error())
	assert.Equal(t, "unknown category", New(ErrUnknownCategory, http.StatusNotFound, "").Error())
}

func TestInvalidKindMessage(t *testing.T) {
	err := InvalidKind("tokenize", 3.5)
	assert.ErrorIs(t, err, ErrInvalidInputKind)
	assert.Contains(t, err.Error(), "float64")
}
