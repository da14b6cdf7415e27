// Command server relays sensor status reports into the hosted database.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/sensor-status-relay/internal/config"
	"github.com/iliyamo/sensor-status-relay/internal/handler"
	"github.com/iliyamo/sensor-status-relay/internal/middleware"
	"github.com/iliyamo/sensor-status-relay/internal/repository"
	"github.com/iliyamo/sensor-status-relay/internal/rowstore"
	"github.com/iliyamo/sensor-status-relay/internal/router"
	"github.com/iliyamo/sensor-status-relay/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	setupLogging(cfg)

	key, err := rowstore.InspectKey(cfg.SupabaseKey, time.Now())
	switch {
	case errors.Is(err, rowstore.ErrKeyExpired):
		log.WithField("expired_at", key.ExpiresAt).Fatal("SUPABASE_KEY has expired")
	case err != nil:
		log.WithError(err).Warn("SUPABASE_KEY is not a decodable token; sending it as-is")
	default:
		if !key.MatchesURL(cfg.SupabaseURL) {
			log.WithField("ref", key.Ref).Warn("SUPABASE_KEY was issued for a different project than SUPABASE_URL")
		}
		log.WithFields(log.Fields{"role": key.Role, "ref": key.Ref}).Info("using access key")
	}

	store, err := rowstore.New(rowstore.Config{
		BaseURL: cfg.SupabaseURL,
		APIKey:  cfg.SupabaseKey,
		Timeout: cfg.UpstreamTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("cannot build database client")
	}
	sensors := repository.NewSensorRepo(store, cfg.SensorTable, cfg.SensorColumn, cfg.SensorRowID)

	var notify handler.StatusNotifier
	if cfg.EventsEnabled {
		notify = service.NewEventPublisher(cfg.AMQPURL, cfg.SensorTable, cfg.SensorRowID)
	}

	sensorLimit := config.LoadSensorLimit()
	limit := middleware.SensorLimiter(sensorLimit, nil)
	if sensorLimit.Enabled {
		if rdb := config.NewRedisClient(config.LoadRedisConfig()); rdb != nil {
			defer rdb.Close()
			limit = middleware.SensorLimiter(sensorLimit, rdb)
		} else {
			log.Warn("redis unreachable; sensor rate limit disabled")
		}
	}

	e := router.New(cfg.Debug)
	router.RegisterRoutes(e)
	router.RegisterSensor(e, handler.NewSensorHandler(sensors, notify), limit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithFields(log.Fields{
			"addr":   cfg.Addr(),
			"env":    cfg.Env,
			"table":  cfg.SensorTable,
			"row_id": cfg.SensorRowID,
		}).Info("listening")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
}

func setupLogging(cfg config.Config) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if cfg.Env == "prod" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown LOG_LEVEL; using info")
		level = log.InfoLevel
	}
	if cfg.Debug && level < log.DebugLevel {
		level = log.DebugLevel
	}
	log.SetLevel(level)
}
