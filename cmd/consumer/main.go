// Command consumer drains the sensor.status_changed queue into a log file.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/sensor-status-relay/internal/config"
	"github.com/iliyamo/sensor-status-relay/internal/queue"
)

func main() {
	cfg := config.LoadConsumer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{"queue": queue.StatusQueueName, "path": cfg.LogPath}).Info("consuming")
	if err := queue.StartStatusConsumer(ctx, cfg.AMQPURL, cfg.LogPath); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("consumer stopped")
	}
}
