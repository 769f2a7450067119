package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("enroll: %w", Clone(ErrCapacity, ""))

	appErr := FromError(wrapped)
	assert.Equal(t, ErrCapacity.Code, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, "internal server error: boom", appErr.Error())
}

func TestCloneMatchesTemplate(t *testing.T) {
	err := Clone(ErrNotFound, "Aluno não encontrado")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "Aluno não encontrado", err.Error())
}
