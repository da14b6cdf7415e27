// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

// StatusQueueName is the durable queue status changes are published to.
const StatusQueueName = "sensor.status_changed"

// StatusChangedEvent is published after the remote row accepted a new
// status.  StatusPresent distinguishes an explicit empty report from a
// request that carried no status at all.
type StatusChangedEvent struct {
	EventID       string `json:"event_id"`
	Table         string `json:"table"`
	RowID         int64  `json:"row_id"`
	Status        string `json:"status"`
	StatusPresent bool   `json:"status_present"`
	RemoteIP      string `json:"remote_ip,omitempty"`
	AppliedAt     string `json:"applied_at"`
}
