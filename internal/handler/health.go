package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the liveness endpoint used by load balancers. It only
// proves the process accepts connections; it deliberately touches
// neither the database nor Redis.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
