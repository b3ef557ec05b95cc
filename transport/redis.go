package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	DefaultCommandChannel = "app.send-command"
	DefaultWorldChannel   = "topic.world-updates"
)

// Redis publishes commands on one channel and relays snapshots from
// another.
type Redis struct {
	rdb            *redis.Client
	commandChannel string
	worldChannel   string
	logger         *zap.Logger
}

func NewRedis(rdb *redis.Client, commandChannel, worldChannel string, logger *zap.Logger) *Redis {
	if commandChannel == "" {
		commandChannel = DefaultCommandChannel
	}
	if worldChannel == "" {
		worldChannel = DefaultWorldChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{
		rdb:            rdb,
		commandChannel: commandChannel,
		worldChannel:   worldChannel,
		logger:         logger,
	}
}

func (r *Redis) Run(ctx context.Context, outbox <-chan string, inbox chan<- []byte) error {
	world := r.rdb.Subscribe(ctx, r.worldChannel)
	defer world.Close()

	// Wait for the subscription to be confirmed so no snapshot published
	// after Run starts is missed.
	if _, err := world.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("transport: subscribe %s: %w", r.worldChannel, err)
	}
	r.logger.Info("subscribed", zap.String("channel", r.worldChannel))

	snapshots := world.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil

		case text, ok := <-outbox:
			if !ok {
				return nil
			}
			if err := r.rdb.Publish(ctx, r.commandChannel, text).Err(); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				r.logger.Warn("publish failed, command dropped", zap.String("command", text), zap.Error(err))
			}

		case msg, ok := <-snapshots:
			if !ok {
				return fmt.Errorf("transport: subscription to %s closed", r.worldChannel)
			}
			if !deliver(ctx, inbox, []byte(msg.Payload)) {
				return nil
			}
		}
	}
}

func (r *Redis) Publish(ctx context.Context, text string) error {
	if err := r.rdb.Publish(ctx, r.commandChannel, text).Err(); err != nil {
		return fmt.Errorf("transport: publish %s: %w", r.commandChannel, err)
	}
	return nil
}
