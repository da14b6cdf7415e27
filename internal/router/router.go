// Package router builds the Echo instance and registers the relay's routes.
package router

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/sensor-status-relay/internal/handler"
	"github.com/iliyamo/sensor-status-relay/internal/middleware"
)

// New returns an Echo instance with the relay's global middleware: panic
// recovery and per-request logging.  Error bodies carry only the public
// message in every mode.
func New(debug bool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = debug
	e.HTTPErrorHandler = errorHandler
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())
	return e
}

// RegisterRoutes registers the operational routes.  /healthz answers
// without touching the remote database.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterSensor maps GET / to the status relay.  Only GET is routed, so
// other methods on / get Echo's 405.  limit may be nil.
func RegisterSensor(e *echo.Echo, h *handler.SensorHandler, limit echo.MiddlewareFunc) {
	var mw []echo.MiddlewareFunc
	if limit != nil {
		mw = append(mw, limit)
	}
	e.GET("/", h.UpdateStatus, mw...)
}

// errorHandler renders {"message": ...} for any error.  Unlike Echo's
// default handler it never adds the internal cause, even with Debug on; the
// handlers log it instead.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he := &echo.HTTPError{Code: http.StatusInternalServerError, Message: http.StatusText(http.StatusInternalServerError)}
	var target *echo.HTTPError
	if errors.As(err, &target) {
		he = target
	} else {
		log.WithError(err).WithField("path", c.Path()).Error("router: unhandled error")
	}
	msg := he.Message
	if _, ok := msg.(string); !ok {
		msg = http.StatusText(he.Code)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(he.Code)
	} else {
		err = c.JSON(he.Code, map[string]any{"message": msg})
	}
	if err != nil {
		log.WithError(err).Warn("router: write error response")
	}
}
