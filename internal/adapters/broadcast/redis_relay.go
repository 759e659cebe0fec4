package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/pollster/internal/core/domain"
)

// RedisRelay lets several server instances share one event stream. Local
// events are published to a Redis channel and every instance, this one
// included, delivers what it receives on that channel to its own hub.
// Once the subscription is lost the relay falls back to local delivery.
type RedisRelay struct {
	client   *redis.Client
	channel  string
	hub      *Hub
	log      logrus.FieldLogger
	outbound chan []byte
	detached atomic.Bool
}

var errSubscriptionClosed = errors.New("subscription closed")

func NewRedisRelay(client *redis.Client, channel string, hub *Hub, log logrus.FieldLogger) *RedisRelay {
	return &RedisRelay{
		client:   client,
		channel:  channel,
		hub:      hub,
		log:      log.WithField("channel", channel),
		outbound: make(chan []byte, queueSize),
	}
}

func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// Publish implements ports.Broadcaster.
func (r *RedisRelay) Publish(ctx context.Context, event domain.Event) {
	if r.detached.Load() {
		r.hub.Publish(ctx, event)
		return
	}
	payload, err := Encode(event)
	if err != nil {
		r.log.WithError(err).Error("dropping event")
		return
	}
	select {
	case r.outbound <- payload:
	default:
		r.log.WithField("poll_id", event.EventPollID()).Warn("relay queue full, dropping event")
	}
}

// Run subscribes before it starts publishing so this instance never misses
// its own events. It returns once ctx is done or the subscription fails; in
// the latter case later events go straight to the local hub.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.detach()
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}

	go r.publishLoop(ctx)

	incoming := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-incoming:
			if !ok {
				r.detach()
				return fmt.Errorf("%s: %w", r.channel, errSubscriptionClosed)
			}
			r.deliver([]byte(msg.Payload))
		}
	}
}

// Detached reports whether the relay has fallen back to local delivery.
func (r *RedisRelay) Detached() bool {
	return r.detached.Load()
}

// detach switches to local delivery and hands over whatever is still queued.
func (r *RedisRelay) detach() {
	r.detached.Store(true)
	for {
		select {
		case payload := <-r.outbound:
			r.deliver(payload)
		default:
			return
		}
	}
}

func (r *RedisRelay) deliver(payload []byte) {
	header, err := decodeHeader(payload)
	if err != nil {
		r.log.WithError(err).Warn("ignoring malformed relay message")
		return
	}
	r.hub.Deliver(header.Data.PollID, payload)
}

func (r *RedisRelay) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-r.outbound:
			if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
				r.log.WithError(err).Error("failed to publish event to redis, delivering locally")
				r.deliver(payload)
			}
		}
	}
}
