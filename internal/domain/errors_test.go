package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain"
)

func TestCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{domain.Validation("x"), "VALIDATION_ERROR"},
		{domain.NotFound("x"), "NOT_FOUND"},
		{domain.State("x"), "STATE_ERROR"},
		{domain.Permission("x"), "PERMISSION_DENIED"},
		{domain.Overlap("x"), "OVERLAP_ERROR"},
		{domain.ErrUnauthorized, "UNAUTHORIZED"},
		{domain.ErrEmailAlreadyExists, "EMAIL_EXISTS"},
		{fmt.Errorf("lote: %w", domain.ErrDuplicate), "DUPLICATE"},
		{errors.New("conexión perdida"), "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, domain.Code(tc.err), tc.err.Error())
	}
}

func TestMessage(t *testing.T) {
	err := fmt.Errorf("aplicar: %w", domain.State("el lote %s está %s", "A-01", "VENDIDO"))
	assert.Equal(t, "el lote A-01 está VENDIDO", domain.Message(err))
	assert.True(t, errors.Is(err, domain.ErrState))

	assert.Equal(t, "boom", domain.Message(errors.New("boom")))
}
