package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func meHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"user_id": UserIDFromContext(c.Request().Context()),
		"role":    RoleFromContext(c.Request().Context()),
	})
}

func newEchoWithAuth(secret []byte) *echo.Echo {
	e := echo.New()
	e.Use(JWTMiddleware(secret))
	e.GET("/me", meHandler)
	return e
}

func newEchoWithRoleGate(secret []byte, role string) *echo.Echo {
	e := echo.New()
	e.Use(JWTMiddleware(secret))
	e.GET("/gated", meHandler, RequireRole(role))
	return e
}

func newEchoWithDevAuth(secret []byte) *echo.Echo {
	e := echo.New()
	e.Use(DevAuthMiddleware(secret))
	e.GET("/me", meHandler)
	return e
}
