package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/gestao-escolar-api/pkg/errors"
)

func TestValidationErrorMessages(t *testing.T) {
	type payload struct {
		Seats  int    `json:"vagas" validate:"gte=1"`
		Step   int    `json:"passo" validate:"gt=0"`
		Status string `json:"status" validate:"omitempty,student_status"`
	}
	err := NewValidator().Struct(payload{Status: "graduado"})
	require.Error(t, err)

	converted := validationError(err)
	assert.ErrorIs(t, converted, appErrors.ErrValidation)
	assert.Contains(t, converted.Error(), "vagas: deve ser maior ou igual a 1")
	assert.Contains(t, converted.Error(), "passo: deve ser maior que 0")
	assert.Contains(t, converted.Error(), "status: valor deve ser um de [active inactive ativo inativo]")
}

func TestStudentStatusValidationAcceptsAnyCase(t *testing.T) {
	type payload struct {
		Status string `json:"status" validate:"omitempty,student_status"`
	}
	v := NewValidator()
	for _, status := range []string{"", "active", "ACTIVE", "Inativo", " ativo "} {
		assert.NoError(t, v.Struct(payload{Status: status}), status)
	}
}
