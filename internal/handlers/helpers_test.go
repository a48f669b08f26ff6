package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/lost2found/backend/internal/status"
	"github.com/lost2found/backend/internal/throttle"
	"github.com/lost2found/backend/internal/workflow"
)

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return httpErr.Code
}

func TestWorkflowHTTPErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", workflow.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", workflow.ErrNotFound), http.StatusNotFound},
		{"forbidden", fmt.Errorf("cannot claim own item: %w", workflow.ErrForbidden), http.StatusForbidden},
		{"invalid transition", &workflow.InvalidTransitionError{From: status.Resolved, To: status.Secured}, http.StatusBadRequest},
		{"rate limited", &throttle.LimitError{Hint: "Too many claim requests. Please try again in an hour."}, http.StatusTooManyRequests},
		{"unknown", errors.New("firestore unavailable"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if code := httpCode(t, workflowHTTPError(tt.err)); code != tt.code {
			t.Errorf("%s: code = %d, want %d", tt.name, code, tt.code)
		}
	}
}

func TestWorkflowHTTPErrorKeepsTransitionDetail(t *testing.T) {
	err := workflowHTTPError(&workflow.InvalidTransitionError{From: status.Reported, To: status.Verified})
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if httpErr.Message != "invalid transition from REPORTED to VERIFIED" {
		t.Errorf("message = %v", httpErr.Message)
	}
}

func TestActorFromContext(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set("firebaseUID", "uid-1")
	c.Set("email", "ana@campus.edu")
	c.Set("name", "Ana")

	actor, err := actorFromContext(c)
	if err != nil {
		t.Fatalf("actorFromContext: %v", err)
	}
	if actor.UID != "uid-1" || actor.Email != "ana@campus.edu" || actor.Name != "Ana" {
		t.Errorf("actor = %+v", actor)
	}

	// No auth middleware ran: reject.
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err = actorFromContext(c)
	if code := httpCode(t, err); code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", code)
	}
}
