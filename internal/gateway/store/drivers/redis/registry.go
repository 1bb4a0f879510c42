// Package redis keeps the session registry in Redis so several firegate
// replicas can share revocations. Principals and pending password changes
// stay in the relational store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
	"github.com/aussiebroadwan/firegate/internal/gateway/store"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "firegate"

// SessionRegistry implements store.Sessions on top of Redis keys that expire
// together with the session.
type SessionRegistry struct {
	client *redis.Client
	prefix string
}

var _ store.Sessions = (*SessionRegistry)(nil)

type sessionPayload struct {
	PrincipalID string `json:"principal_id"`
	Kind        string `json:"kind"`
	CreatedAt   int64  `json:"created_at"`
	ExpiresAt   int64  `json:"expires_at"`
}

// NewSessionRegistry wraps client. An empty prefix uses "firegate".
func NewSessionRegistry(client *redis.Client, prefix string) *SessionRegistry {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &SessionRegistry{client: client, prefix: prefix}
}

// Dial connects to addr and verifies the server answers.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (r *SessionRegistry) sessionKey(sid string) string {
	return r.prefix + ":session:" + sid
}

func (r *SessionRegistry) principalKey(principalID string) string {
	return r.prefix + ":principal:" + principalID + ":sessions"
}

func (r *SessionRegistry) CreateSession(ctx context.Context, s domain.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(sessionPayload{
		PrincipalID: s.PrincipalID,
		Kind:        string(s.Kind),
		CreatedAt:   s.CreatedAt.UnixMilli(),
		ExpiresAt:   s.ExpiresAt.UnixMilli(),
	})
	if err != nil {
		return err
	}

	ok, err := r.client.SetNX(ctx, r.sessionKey(s.ID), data, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrAlreadyExists
	}

	pk := r.principalKey(s.PrincipalID)
	if err := r.client.SAdd(ctx, pk, s.ID).Err(); err != nil {
		return err
	}

	// The index lives as long as its longest session.
	current, err := r.client.TTL(ctx, pk).Result()
	if err != nil {
		return err
	}
	if current < ttl {
		return r.client.Expire(ctx, pk, ttl).Err()
	}
	return nil
}

func (r *SessionRegistry) SessionActive(ctx context.Context, sid string) (bool, error) {
	n, err := r.client.Exists(ctx, r.sessionKey(sid)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *SessionRegistry) RevokeSession(ctx context.Context, sid string) error {
	key := r.sessionKey(sid)
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}

	var payload sessionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SRem(ctx, r.principalKey(payload.PrincipalID), sid)
		return nil
	})
	return err
}

func (r *SessionRegistry) RevokePrincipalSessions(ctx context.Context, principalID string) error {
	pk := r.principalKey(principalID)
	sids, err := r.client.SMembers(ctx, pk).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(sids)+1)
	for _, sid := range sids {
		keys = append(keys, r.sessionKey(sid))
	}
	keys = append(keys, pk)
	return r.client.Del(ctx, keys...).Err()
}

// DeleteExpiredSessions is a no-op, Redis expires the keys itself.
func (r *SessionRegistry) DeleteExpiredSessions(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// Ping reports whether Redis is reachable, used by the readiness probe.
func (r *SessionRegistry) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
