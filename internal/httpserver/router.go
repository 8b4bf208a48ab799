package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/middleware"
)

type Deps struct {
	AuthHandler *AuthHTTP
	Gate        *middleware.SessionGate

	// OpenRegistration leaves POST /users unauthenticated. When false the
	// route sits behind the session gate like every other protected route.
	OpenRegistration bool
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.POST("/token", d.AuthHandler.Token)

	private := e.Group("", d.Gate.RequireUser)
	private.GET("/users/me", d.AuthHandler.Me)
	private.GET("/users/me/items", d.AuthHandler.MyItems)
	private.GET("/users", d.AuthHandler.ListUsers)
	private.GET("/users/search", d.AuthHandler.SearchUsers)

	if d.OpenRegistration {
		e.POST("/users", d.AuthHandler.CreateUser)
	} else {
		private.POST("/users", d.AuthHandler.CreateUser)
	}
}
