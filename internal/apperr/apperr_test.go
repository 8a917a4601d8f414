package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{Validation("bad input"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{InvalidState("not editable"), http.StatusBadRequest, "INVALID_STATE"},
		{InvalidTransition("order", "pending", "completed"), http.StatusBadRequest, "INVALID_TRANSITION"},
		{NotFound("order"), http.StatusNotFound, "NOT_FOUND"},
		{Dependency("pricing", errors.New("boom")), http.StatusBadGateway, "DEPENDENCY_ERROR"},
		{Internal("db write failed", errors.New("boom")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{errors.New("plain"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, HTTPStatus(tc.err), tc.code)
		assert.Equal(t, tc.code, CodeOf(tc.err))
	}
}

func TestPublicMessageDropsCause(t *testing.T) {
	internal := Internal("failed to save repair", errors.New("constraint violation on repair_requests"))
	assert.Equal(t, "failed to save repair", PublicMessage(internal))

	wrapped := fmt.Errorf("processing: %w", Dependency("payment", errors.New("timeout")))
	assert.Equal(t, "payment call failed", PublicMessage(wrapped))

	assert.Equal(t, "customer not found", PublicMessage(NotFound("customer")))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("raw db error")))
}

func TestWrappingSurvivesErrorsAs(t *testing.T) {
	inner := NotFound("customer")
	wrapped := fmt.Errorf("creating order: %w", inner)

	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))

	cause := errors.New("connection refused")
	dep := Dependency("payment", cause)
	assert.True(t, errors.Is(dep, cause))
	assert.Contains(t, dep.Error(), "payment call failed")
}
