package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lost2found/backend/internal/throttle"
	"github.com/lost2found/backend/internal/workflow"
)

// actorFromContext builds the workflow actor from the values the auth
// middleware stored on the request context.
func actorFromContext(c echo.Context) (workflow.Actor, error) {
	uid, _ := c.Get("firebaseUID").(string)
	if uid == "" {
		return workflow.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	email, _ := c.Get("email").(string)
	name, _ := c.Get("name").(string)
	return workflow.Actor{UID: uid, Email: email, Name: name}, nil
}

// workflowHTTPError maps workflow and throttle errors onto stable HTTP
// status codes. Invalid transitions keep their "from X to Y" detail; no
// other transition-table internals leak out.
func workflowHTTPError(err error) error {
	var invalid *workflow.InvalidTransitionError
	var limited *throttle.LimitError
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Item not found")
	case errors.Is(err, workflow.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.As(err, &invalid):
		return echo.NewHTTPError(http.StatusBadRequest, invalid.Error())
	case errors.As(err, &limited):
		return echo.NewHTTPError(http.StatusTooManyRequests, limited.Hint)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
