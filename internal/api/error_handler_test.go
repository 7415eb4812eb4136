package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/studyflow/accounts-api/internal/core/domain"
)

func invoke(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)
	return rec
}

func TestHTTPErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrInvalidToken, http.StatusUnauthorized},
		{domain.ErrInvalidRefreshToken, http.StatusUnauthorized},
		{domain.ErrInvalidResetToken, http.StatusUnauthorized},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrDuplicateAccount, http.StatusConflict},
		{domain.ErrAlreadySubscribed, http.StatusConflict},
		{domain.ErrTrailAlreadyCompleted, http.StatusConflict},
		{domain.ErrNotSubscribed, http.StatusNotFound},
	}

	for _, tc := range cases {
		rec := invoke(t, tc.err)
		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%v: invalid json: %v", tc.err, err)
		}
		if resp["error"] == "" {
			t.Fatalf("%v: missing error envelope", tc.err)
		}
	}
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	rec := invoke(t, echo.NewHTTPError(http.StatusBadRequest, "bad payload"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHTTPErrorHandler_UnexpectedErrorIsGeneric(t *testing.T) {
	rec := invoke(t, errors.New("mongo exploded"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["error"] != "internal server error" {
		t.Fatalf("internal detail leaked: %q", resp["error"])
	}
}
