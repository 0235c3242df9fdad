package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobnexus/jobboard/internal/api/middleware"
	"github.com/jobnexus/jobboard/internal/core/access"
	"github.com/jobnexus/jobboard/internal/core/domain"
)

// ctxUserID returns the identity id proven by the Auth middleware. Its absence
// means the route was registered without the gate; reject rather than serve.
func ctxUserID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.UserIDKey).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, access.MsgNoToken)
	}
	return id, nil
}

// ctxUser returns the identity loaded by the role gate.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(middleware.UserKey).(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, access.MsgNoToken)
	}
	return user, nil
}

// bindAndValidate decodes the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
