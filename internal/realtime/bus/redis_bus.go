package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
	"github.com/adaosilva/imoveis-backend/internal/realtime"
)

const (
	defaultRedisChannel = "imoveis:realtime"
	envelopeVersion     = 1
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// envelope is the wire format on the Redis channel. Origin identifies the
// publishing replica.
type envelope struct {
	V       int              `json:"v"`
	Origin  string           `json:"origin"`
	SentAt  time.Time        `json:"sent_at"`
	Message realtime.Message `json:"message"`
}

var errBadEnvelope = errors.New("bad realtime envelope")

func encodeEnvelope(origin string, msg realtime.Message, now time.Time) ([]byte, error) {
	return json.Marshal(envelope{V: envelopeVersion, Origin: origin, SentAt: now.UTC(), Message: msg})
}

func decodeEnvelope(raw string) (envelope, error) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return envelope{}, fmt.Errorf("%w: %v", errBadEnvelope, err)
	}
	if env.V != envelopeVersion {
		return envelope{}, fmt.Errorf("%w: version %d", errBadEnvelope, env.V)
	}
	if env.Message.Channel == "" || env.Message.Event == "" {
		return envelope{}, fmt.Errorf("%w: missing channel or event", errBadEnvelope)
	}
	return env, nil
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	origin  string
}

// NewRedisBus connects to Redis, retrying the initial ping while the
// server comes up.
func NewRedisBus(ctx context.Context, log *logger.Logger, cfg RedisConfig) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = defaultRedisChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	busLog := log.With("service", "RedisRealtimeBus", "channel", ch)

	err := retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			return rdb.Ping(pingCtx).Err()
		},
		retry.Context(ctx),
		retry.Attempts(4),
		retry.Delay(250*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			busLog.Warn("Redis not ready, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisBus{
		log:     busLog,
		rdb:     rdb,
		channel: ch,
		origin:  uuid.NewString(),
	}, nil
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.Message) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis realtime bus not initialized")
	}
	raw, err := encodeEnvelope(b.origin, msg, time.Now())
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis realtime bus not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer func() { _ = sub.Close() }()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				env, err := decodeEnvelope(m.Payload)
				if err != nil {
					b.log.Warn("Dropping realtime payload", "error", err)
					continue
				}
				if env.Origin != b.origin {
					b.log.Debug("Realtime message from peer", "origin", env.Origin, "event", env.Message.Event, "lag", time.Since(env.SentAt))
				}
				onMsg(env.Message)
			}
		}
	}()
	return nil
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
