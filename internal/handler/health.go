package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports that the relay is up.  It does not call the remote
// database, so an upstream outage does not get the relay restarted.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
