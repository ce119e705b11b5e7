package http

import "github.com/labstack/echo/v4"

// Handler registers its routes on the server's echo instance. The server
// accepts any handler so route wiring stays with the API packages.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
