// Package queue consumes business events from a Redis list and feeds them
// into the engine.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cadenzahq/cadenza/pkg/models"
	redis "github.com/redis/go-redis/v9"
)

// Dispatcher routes one decoded business event. Implemented by the engine.
type Dispatcher interface {
	Dispatch(ctx context.Context, triggerType models.TriggerType, payload map[string]any) error
}

// Config holds the Redis connection and queue settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Queue    string
}

// message is the wire format pushed onto the Redis list by event producers.
type message struct {
	TriggerType models.TriggerType `json:"trigger_type"`
	Payload     map[string]any     `json:"payload"`
}

// Receiver pops event messages off a Redis list and dispatches them.
type Receiver struct {
	config     Config
	client     redis.UniversalClient
	dispatcher Dispatcher
	logger     *slog.Logger
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

func NewReceiver(config Config, dispatcher Dispatcher, logger *slog.Logger) (*Receiver, error) {
	if config.Addr == "" {
		config.Addr = "localhost:6379"
	}

	receiver := &Receiver{
		config:     config,
		dispatcher: dispatcher,
		stopCh:     make(chan struct{}),
		logger: logger.With(
			"module", "queue_receiver",
			"queue", config.Queue,
		),
	}

	if err := receiver.Validate(); err != nil {
		return nil, err
	}

	return receiver, nil
}

func (r *Receiver) Validate() error {
	if r.config.Queue == "" {
		return errors.New("queue receiver queue name is required")
	}

	return nil
}

// Start connects to Redis and begins consuming. Returns once the consumer
// goroutine is running.
func (r *Receiver) Start(ctx context.Context) error {
	r.logger.InfoContext(ctx, "Starting queue receiver")

	r.client = redis.NewClient(&redis.Options{
		Addr:     r.config.Addr,
		Password: r.config.Password,
		DB:       r.config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	r.logger.InfoContext(ctx, "Connected to Redis", "addr", r.config.Addr, "db", r.config.DB)

	r.wg.Add(1)

	go r.consume(ctx)

	return nil
}

func (r *Receiver) consume(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopCh:
			r.logger.InfoContext(ctx, "Queue consumer stopped")

			return
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "Context cancelled, stopping queue consumer")

			return
		default:
			if err := r.processMessage(ctx); err != nil {
				r.logger.ErrorContext(ctx, "Error processing message", "error", err)
				time.Sleep(1 * time.Second)
			}
		}
	}
}

func (r *Receiver) processMessage(ctx context.Context) error {
	result, err := r.client.BRPop(ctx, 1*time.Second, r.config.Queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}

		return fmt.Errorf("failed to pop message from queue: %w", err)
	}

	if len(result) < 2 {
		return nil
	}

	triggerType, payload, err := decodeMessage(result[1])
	if err != nil {
		// Malformed messages are discarded, not retried.
		r.logger.ErrorContext(ctx, "Discarding malformed message", "error", err)

		return nil
	}

	if err := r.dispatcher.Dispatch(ctx, triggerType, payload); err != nil {
		return fmt.Errorf("dispatch failed for trigger '%s': %w", triggerType, err)
	}

	return nil
}

func decodeMessage(raw string) (models.TriggerType, map[string]any, error) {
	var msg message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return "", nil, fmt.Errorf("invalid message JSON: %w", err)
	}

	if !msg.TriggerType.IsValid() {
		return "", nil, fmt.Errorf("unknown trigger type '%s'", msg.TriggerType)
	}

	if msg.Payload == nil {
		msg.Payload = map[string]any{}
	}

	return msg.TriggerType, msg.Payload, nil
}

func (r *Receiver) Stop(ctx context.Context) error {
	r.logger.InfoContext(ctx, "Stopping queue receiver")

	close(r.stopCh)
	r.wg.Wait()

	if r.client != nil {
		if err := r.client.Close(); err != nil {
			r.logger.ErrorContext(ctx, "Error closing Redis client", "error", err)
		}
	}

	return nil
}
