package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/sensor-status-relay/internal/config"
)

// gcraScript keeps one theoretical arrival time (ms) per sensor.  ARGV is
// now, every, burst, idle (all ms except burst); it returns
// {allowed, remaining, retry_after_ms}.
var gcraScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local every = tonumber(ARGV[2])
local burst = tonumber(ARGV[3])
local idle = tonumber(ARGV[4])

local tat = tonumber(redis.call('GET', KEYS[1]) or now)
if tat < now then tat = now end
local next_tat = tat + every
local ahead = next_tat - now
local window = burst * every

if ahead > window then
	return {0, 0, ahead - window}
end
redis.call('SET', KEYS[1], next_tat, 'PX', math.max(idle, ahead))
return {1, math.floor((window - ahead) / every), 0}
`)

// SensorLimiter spaces out reports per sensor IP.  It is a pass-through when
// disabled or without Redis, and lets the report through when Redis fails:
// a dropped reading costs more than an extra write.
func SensorLimiter(l config.SensorLimit, rdb *redis.Client) echo.MiddlewareFunc {
	if !l.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := sensorKey(l.Prefix, c.RealIP())
			res, err := gcraScript.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(), l.Every.Milliseconds(), l.Burst, l.Idle.Milliseconds(),
			).Int64Slice()
			if err != nil || len(res) != 3 {
				log.WithError(err).WithField("key", key).Warn("limiter: redis unavailable, letting report through")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("RateLimit-Limit", strconv.Itoa(l.Burst))
			h.Set("RateLimit-Remaining", strconv.FormatInt(res[1], 10))
			if res[0] == 1 {
				return next(c)
			}

			wait := int(math.Ceil(float64(res[2]) / 1000))
			h.Set("Retry-After", strconv.Itoa(wait))
			log.WithFields(log.Fields{"sensor": c.RealIP(), "retry_after": wait}).Info("limiter: report dropped")
			return echo.NewHTTPError(http.StatusTooManyRequests, "sensor reports too often")
		}
	}
}

func sensorKey(prefix, ip string) string {
	if ip == "" {
		ip = "unknown"
	}
	return prefix + ":" + ip
}
