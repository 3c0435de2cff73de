package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Message is what travels on a channel and what websocket clients receive.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

type Subscription interface {
	Messages() <-chan Message
	Close() error
}

// UserChannel names the channel only the given user may listen on.
func UserChannel(userID string) string {
	return "private-user." + userID
}

type RedisNotifier struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisNotifier(rdb *redis.Client, logger ...*zap.Logger) *RedisNotifier {
	l := zap.L().Named("notify.redis")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notify.redis")
	}
	return &RedisNotifier{rdb: rdb, logger: l}
}

func (n *RedisNotifier) Publish(ctx context.Context, channel, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event, err)
	}
	body, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("encode %s message: %w", event, err)
	}

	receivers, err := n.rdb.Publish(ctx, channel, body).Result()
	if err != nil {
		return fmt.Errorf("publish %s on %s: %w", event, channel, err)
	}
	n.logger.Debug("notification published",
		zap.String("channel", channel),
		zap.String("event", event),
		zap.Int64("receivers", receivers),
	)
	return nil
}

func (n *RedisNotifier) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	ps := n.rdb.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	sub := newRedisSubscription(ps)
	go sub.forward(ps.Channel(), n.logger)
	return sub, nil
}

type redisSubscription struct {
	ps   *redis.PubSub
	out  chan Message
	done chan struct{}
	once sync.Once
}

func newRedisSubscription(ps *redis.PubSub) *redisSubscription {
	return &redisSubscription{
		ps:   ps,
		out:  make(chan Message, 16),
		done: make(chan struct{}),
	}
}

// forward decodes pubsub payloads onto out until the source closes or the
// subscription is closed, even when nobody is reading out any more.
func (s *redisSubscription) forward(in <-chan *redis.Message, logger *zap.Logger) {
	defer close(s.out)
	for {
		var m *redis.Message
		select {
		case <-s.done:
			return
		case next, ok := <-in:
			if !ok {
				return
			}
			m = next
		}

		var msg Message
		if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
			logger.Warn("drop malformed notification", zap.String("channel", m.Channel), zap.Error(err))
			continue
		}
		select {
		case s.out <- msg:
		case <-s.done:
			return
		}
	}
}

func (s *redisSubscription) Messages() <-chan Message {
	return s.out
}

func (s *redisSubscription) Close() error {
	s.once.Do(func() { close(s.done) })
	if s.ps == nil {
		return nil
	}
	return s.ps.Close()
}
