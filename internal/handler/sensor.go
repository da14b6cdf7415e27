// Package handler holds the relay's HTTP handlers.
package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/sensor-status-relay/internal/model"
	"github.com/iliyamo/sensor-status-relay/internal/rowstore"
)

// notifyTimeout bounds the best-effort event publish after a response.
const notifyTimeout = 5 * time.Second

// StatusStore writes the sensor status to the remote row.
type StatusStore interface {
	SetStatus(ctx context.Context, status model.Status) (rowstore.Result, error)
}

// StatusNotifier announces an applied status.  Failures never reach the
// HTTP caller.
type StatusNotifier interface {
	NotifyStatus(ctx context.Context, status model.Status, remoteIP string) error
}

// SensorHandler bundles dependencies for the status endpoint.
type SensorHandler struct {
	Store  StatusStore
	Notify StatusNotifier // optional
}

func NewSensorHandler(store StatusStore, notify StatusNotifier) *SensorHandler {
	return &SensorHandler{Store: store, Notify: notify}
}

// UpdateStatus handles GET /?status=<value>.  The value is forwarded
// verbatim; a missing parameter is forwarded as absent (NULL).  The body is
// the textual dump of what the remote returned.
func (h *SensorHandler) UpdateStatus(c echo.Context) error {
	status := statusParam(c.Request().URL.RawQuery)

	ctx := c.Request().Context()
	res, err := h.Store.SetStatus(ctx, status)
	if err != nil {
		log.WithError(err).WithField("status", status.String()).Warn("sensor: status update failed")
		return upstreamError(err)
	}
	log.WithFields(log.Fields{"status": status.String(), "rows": len(res.Data)}).Debug("sensor: status updated")

	if h.Notify != nil {
		ip := c.RealIP()
		go func() {
			nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
			defer cancel()
			_ = h.Notify.NotifyStatus(nctx, status, ip)
		}()
	}

	return c.String(http.StatusOK, res.String())
}

// statusParam returns the first status value in rawQuery.  Pairs are split
// on '&' only and a value that does not unescape is kept as sent, so "50%"
// and "a;b" arrive intact where url.ParseQuery would drop them.
func statusParam(rawQuery string) model.Status {
	for _, pair := range strings.Split(rawQuery, "&") {
		key, value, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if key != "status" {
			continue
		}
		if v, err := url.QueryUnescape(value); err == nil {
			value = v
		}
		return model.StatusOf(value)
	}
	return model.NoStatus()
}

// upstreamError maps a failed remote call to a distinct HTTP status per
// failure kind.  The cause stays internal to the error and out of the body.
func upstreamError(err error) *echo.HTTPError {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, rowstore.ErrTimeout):
		code = http.StatusGatewayTimeout
	case errors.Is(err, rowstore.ErrNetwork):
		code = http.StatusServiceUnavailable
	case errors.Is(err, rowstore.ErrAuth):
		code = http.StatusBadGateway
	case errors.Is(err, rowstore.ErrRejected):
		code = http.StatusUnprocessableEntity
	}
	return echo.NewHTTPError(code, http.StatusText(code)).SetInternal(err)
}
