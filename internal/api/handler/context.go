package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxCaller extracts the identity injected by the Authenticate middleware
// and fast-fails before any service call: a missing user_id means the
// middleware never ran on this route.
func ctxCaller(c echo.Context) (userID, role string, err error) {
	userID, _ = c.Get("user_id").(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	role, _ = c.Get("role").(string)
	return userID, role, nil
}
