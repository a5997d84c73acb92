package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/peoplehub/hr-backend/internal/model"
	"github.com/peoplehub/hr-backend/internal/polish"
)

// perJobTimeout bounds one polish call end to end, retries included.
const perJobTimeout = 2 * time.Minute

// PolishResultStore records the outcome of a polish job. The store only
// applies a result when jobID still matches the job the row is waiting
// on; results from superseded jobs match nothing and are dropped.
type PolishResultStore interface {
	SetPolishResult(ctx context.Context, id uint64, jobID, status string, polished, polishErr *string) error
}

// StartPolishConsumer connects to RabbitMQ and processes polish jobs
// until the process exits. It runs a reconnect loop with capped backoff;
// individual job failures mark the feedback row FAILED and are rejected
// without requeue so a poison message cannot spin the worker.
func StartPolishConsumer(polisher polish.Polisher, feedback PolishResultStore) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("polish-consumer: dial failed: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, polisher, feedback); err != nil {
			log.Printf("polish-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, polisher polish.Polisher, feedback PolishResultStore) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		log.Printf("polish-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(PolishQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(PolishQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleJob(d.Body, polisher, feedback); err != nil {
			log.Printf("polish-consumer: job failed: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleJob(body []byte, polisher polish.Polisher, feedback PolishResultStore) error {
	var ev PolishRequestedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), perJobTimeout)
	defer cancel()

	polished, err := polisher.Polish(ctx, ev.Content, ev.Model)
	if err != nil {
		msg := err.Error()
		if dbErr := feedback.SetPolishResult(ctx, ev.FeedbackID, ev.JobID, model.PolishFailed, nil, &msg); dbErr != nil {
			return fmt.Errorf("record polish failure for job %s: %w", ev.JobID, dbErr)
		}
		log.Printf("polish-consumer: job %s feedback=%d failed: %v", ev.JobID, ev.FeedbackID, err)
		return nil // outcome recorded; do not redeliver
	}
	if err := feedback.SetPolishResult(ctx, ev.FeedbackID, ev.JobID, model.PolishReady, &polished, nil); err != nil {
		return fmt.Errorf("record polish result for job %s: %w", ev.JobID, err)
	}
	log.Printf("polish-consumer: job %s feedback=%d ready", ev.JobID, ev.FeedbackID)
	return nil
}
