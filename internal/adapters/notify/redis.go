package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

// ChannelPrefix namespaces the redis pub/sub channels.
const ChannelPrefix = "vault:"

// Connect initializes a Redis client from a redis:// URL or a host:port address.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// wireEvent keeps the payload raw so relayed events are re-emitted byte for byte.
type wireEvent struct {
	Channel    domain.Channel  `json:"channel"`
	Name       string          `json:"event"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// RedisSink publishes events to redis so every backend instance can relay them.
type RedisSink struct {
	client *redis.Client
}

var _ Sink = (*RedisSink)(nil)

// NewRedisSink creates a sink on an existing client.
func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{client: client}
}

// Publish sends evt on vault:<kind>:<key>.
func (s *RedisSink) Publish(ctx context.Context, evt domain.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", evt.Name, err)
	}
	if err := s.client.Publish(ctx, ChannelPrefix+evt.Channel.String(), body).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", evt.Channel, err)
	}
	return nil
}

// RedisRelay subscribes to every vault channel and forwards decoded events to a local sink,
// normally the Hub serving this instance's SSE clients.
type RedisRelay struct {
	client *redis.Client
	target Sink
	logger *slog.Logger
}

// NewRedisRelay creates a relay into target.
func NewRedisRelay(client *redis.Client, target Sink, logger *slog.Logger) *RedisRelay {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRelay{client: client, target: target, logger: logger}
}

// Run blocks until ctx is done or the subscription fails.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.PSubscribe(ctx, ChannelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("redis psubscribe: %w", err)
	}
	r.logger.Info("Redis relay subscribed", slog.String("pattern", ChannelPrefix+"*"))

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			evt, err := decodeEvent(msg.Payload)
			if err != nil {
				r.logger.Warn("Dropping malformed relayed event", slog.String("channel", msg.Channel), slog.String("error", err.Error()))
				continue
			}
			if err := r.target.Publish(ctx, evt); err != nil {
				r.logger.Warn("Relay target rejected event", slog.String("event", evt.Name), slog.String("error", err.Error()))
			}
		}
	}
}

func decodeEvent(raw string) (domain.Event, error) {
	var w wireEvent
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return domain.Event{}, err
	}
	if w.Channel.Kind == "" || w.Channel.Key == "" || w.Name == "" {
		return domain.Event{}, fmt.Errorf("incomplete event")
	}
	return domain.Event{Channel: w.Channel, Name: w.Name, Payload: w.Payload, OccurredAt: w.OccurredAt}, nil
}
