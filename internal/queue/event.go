// Package queue carries the asynchronous feedback-polish pipeline over
// RabbitMQ: handlers publish jobs, the background consumer executes them
// and writes results back to the feedback table.
package queue

import "time"

// PolishQueueName is the durable queue polish jobs travel on.
const PolishQueueName = "feedback.polish"

// PolishRequestedEvent is published when a feedback row is stored in the
// POLISHING state. It carries everything the consumer needs so no
// database read is required before calling the polisher.
type PolishRequestedEvent struct {
	JobID       string    `json:"job_id"`
	FeedbackID  uint64    `json:"feedback_id"`
	Content     string    `json:"content"`
	Model       string    `json:"model"`
	RequestedAt time.Time `json:"requested_at"`
}
