package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/returnloop/pickup-system/internal/core/ports"
)

// ctxActor extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: both the user id and
// the role must be present, otherwise the token is structurally valid but
// operationally unusable — reject with 401.
func ctxActor(c echo.Context) (ports.Actor, error) {
	role, _ := c.Get("role").(string)
	userID, _ := c.Get("user_id").(string)
	if role == "" || userID == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return ports.Actor{ID: userID, Role: role}, nil
}
