package bus

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tlum/assistant-backend/core"
	"github.com/tlum/assistant-backend/logging"
)

// RedisStream implements Stream on Redis Pub/Sub with automatic reconnection.
// All events travel on a single configured channel; correlation happens above
// this layer.
type RedisStream struct {
	mu            sync.Mutex
	client        *redis.Client
	options       *redis.Options
	channel       string
	subscriptions []*redis.PubSub
	logger        logging.Logger
}

// RedisStreamOptions configure a RedisStream.
type RedisStreamOptions struct {
	// Channel is the Pub/Sub channel name all events travel on.
	Channel string
	Logger  logging.Logger
}

// NewRedisStream creates a Redis-backed event stream from client options.
func NewRedisStream(opts *redis.Options, optFns ...func(o *RedisStreamOptions)) *RedisStream {
	sopts := RedisStreamOptions{Channel: "assistant-events", Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&sopts)
	}
	return &RedisStream{
		client:  redis.NewClient(opts),
		options: opts,
		channel: sopts.Channel,
		logger:  sopts.Logger,
	}
}

// ensureConnection pings the server and reconnects if necessary. The stale
// client is closed so its connection pool does not leak.
func (s *RedisStream) ensureConnection(ctx context.Context) {
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.logger.Warn("bus.redis.reconnect", "error", err.Error())
		_ = s.client.Close()
		s.client = redis.NewClient(s.options)
	}
}

// Publish implements Stream.
func (s *RedisStream) Publish(ctx context.Context, event core.Event) error {
	s.mu.Lock()
	s.ensureConnection(ctx)
	client := s.client
	s.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return client.Publish(ctx, s.channel, data).Err()
}

// Subscribe implements Stream. Messages that fail to decode as events are
// dropped; a poisoned payload must never take the subscription down.
func (s *RedisStream) Subscribe(ctx context.Context) (<-chan core.Event, error) {
	s.mu.Lock()
	s.ensureConnection(ctx)
	ps := s.client.Subscribe(ctx, s.channel)
	s.subscriptions = append(s.subscriptions, ps)
	s.mu.Unlock()

	ch := make(chan core.Event)
	go func() {
		defer close(ch)
		for {
			msg, err := ps.ReceiveMessage(ctx)
			if err != nil {
				// ErrClosed means Close tore the subscription down; retrying
				// would spin on a dead PubSub forever.
				if ctx.Err() != nil || errors.Is(err, redis.ErrClosed) {
					return
				}
				s.logger.Warn("bus.redis.receive", "error", err.Error())
				time.Sleep(time.Second)
				continue
			}
			var ev core.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				s.logger.Debug("bus.redis.malformed_dropped", "error", err.Error())
				continue
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// Close implements Stream.
func (s *RedisStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ps := range s.subscriptions {
		_ = ps.Close()
	}
	s.subscriptions = nil
	return s.client.Close()
}
