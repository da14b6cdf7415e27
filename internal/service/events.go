// Package service holds side effects that follow a successful status update.
// Errors are logged and returned so callers can ignore them without
// affecting the request that triggered them.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/sensor-status-relay/internal/model"
	"github.com/iliyamo/sensor-status-relay/internal/queue"
)

// EventPublisher announces status changes on RabbitMQ.  Each publish opens
// its own connection; a parking sensor reports a handful of times per hour.
type EventPublisher struct {
	URL   string
	Table string
	RowID int64
}

func NewEventPublisher(url, table string, rowID int64) *EventPublisher {
	return &EventPublisher{URL: url, Table: table, RowID: rowID}
}

// NewStatusChanged builds the event for status applied at t.
func (p *EventPublisher) NewStatusChanged(status model.Status, remoteIP string, t time.Time) queue.StatusChangedEvent {
	v, present := status.Value()
	return queue.StatusChangedEvent{
		EventID:       uuid.NewString(),
		Table:         p.Table,
		RowID:         p.RowID,
		Status:        v,
		StatusPresent: present,
		RemoteIP:      remoteIP,
		AppliedAt:     t.UTC().Format(time.RFC3339Nano),
	}
}

// PublishStatusChanged publishes ev to the status queue as a persistent
// message.
func (p *EventPublisher) PublishStatusChanged(ctx context.Context, ev queue.StatusChangedEvent) error {
	logger := log.WithField("event_id", ev.EventID)

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		logger.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queue.StatusQueueName, // name
		true,                  // durable
		false,                 // autoDelete
		false,                 // exclusive
		false,                 // noWait
		nil,                   // args
	); err != nil {
		logger.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		logger.WithError(err).Warn("rabbitmq: marshal event failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.StatusQueueName, false, false, pub); err != nil {
		logger.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}

// NotifyStatus builds and publishes the event for a status applied now.
func (p *EventPublisher) NotifyStatus(ctx context.Context, status model.Status, remoteIP string) error {
	return p.PublishStatusChanged(ctx, p.NewStatusChanged(status, remoteIP, time.Now()))
}
