package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// El token evita liberar un lock que ya expiró y tomó otra réplica.
const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker lock distribuido con SET NX + TTL.
type Locker struct {
	client *goredis.Client
	script *goredis.Script
}

// NewLocker devuelve nil si no hay cliente.
func NewLocker(client *goredis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{
		client: client,
		script: goredis.NewScript(lockReleaseScript),
	}
}

// TryLock intenta tomar key durante ttl. ok=false si otro proceso lo tiene.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, errors.New("lock client not configured")
	}
	if key == "" {
		return "", false, errors.New("lock key is empty")
	}
	if ttl <= 0 {
		return "", false, errors.New("lock ttl must be positive")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// Release libera el lock solo si el token sigue siendo el dueño.
func (l *Locker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil {
		return nil
	}
	if key == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{key}, token).Err()
}
