package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ritmofit/cupos/pkg/logger"
)

// Handler processes one decoded event. A returned error rejects the message without requeue.
type Handler func(ctx context.Context, event SeatChangedEvent) error

// Subscribe consumes the seat queue until ctx is done or the connection drops
func Subscribe(ctx context.Context, cfg Config, handle Handler) error {
	if !cfg.Enabled {
		return ErrDisabled
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Logger(ctx).WithError(err).Warn("failed to set consumer prefetch")
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume queue %s: %w", cfg.Queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			handleDelivery(ctx, d, handle)
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Reject(requeue bool) error
}

func handleDelivery(ctx context.Context, d amqp.Delivery, handle Handler) {
	process(ctx, d.Body, &d, handle)
}

func process(ctx context.Context, body []byte, ack acknowledger, handle Handler) {
	log := logger.Logger(ctx)

	var event SeatChangedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.WithError(err).Warn("dropping malformed seat event")
		_ = ack.Reject(false)
		return
	}

	if err := handle(ctx, event); err != nil {
		log.WithError(err).WithField("class_id", event.ClassID).Warn("seat event handler failed")
		_ = ack.Reject(false)
		return
	}
	_ = ack.Ack(false)
}
