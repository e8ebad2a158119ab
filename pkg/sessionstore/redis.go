package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by a redis server, for deployments where the web
// glue runs more than one process. Expiry is enforced by per-key TTL, so a
// crashed process never strands a secret past its lifetime.
type Redis struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedis wraps an existing client. keyPrefix namespaces the session keys,
// e.g. "adconsole:session:".
func NewRedis(client *redis.Client, keyPrefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (r *Redis) key(sessionID string) string {
	return r.keyPrefix + sessionID
}

// Values are identifier NUL secret. Identifiers are directory login names and
// cannot contain NUL; reject any that do rather than corrupt the encoding.
func encodeCreds(creds Credentials) (string, error) {
	if strings.ContainsRune(creds.Identifier, 0) {
		return "", errors.New("identifier contains NUL")
	}
	return creds.Identifier + "\x00" + string(creds.Secret), nil
}

func decodeCreds(raw string) (Credentials, error) {
	identifier, secret, ok := strings.Cut(raw, "\x00")
	if !ok {
		return Credentials{}, errors.New("malformed session value")
	}
	return Credentials{Identifier: identifier, Secret: []byte(secret)}, nil
}

func (r *Redis) Put(ctx context.Context, sessionID string, creds Credentials) error {
	value, err := encodeCreds(creds)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(sessionID), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, sessionID string) (Credentials, error) {
	raw, err := r.client.Get(ctx, r.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return Credentials{}, ErrNoSession
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("load session: %w", err)
	}
	return decodeCreds(raw)
}

func (r *Redis) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
