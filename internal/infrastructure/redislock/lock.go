package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript borra la llave sólo si sigue siendo nuestra.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Locker lock distribuido de un solo dueño sobre Redis (SET NX PX).
type Locker struct {
	client *redis.Client
}

// New conecta a Redis a partir de una URL redis:// y valida la conexión.
func New(ctx context.Context, redisURL string) (*Locker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Locker{client: client}, nil
}

// NewWithClient envuelve un cliente existente.
func NewWithClient(client *redis.Client) *Locker {
	return &Locker{client: client}
}

// TryLock intenta tomar key por ttl. ok=false si otro proceso lo tiene.
// release libera el lock sólo si aún nos pertenece.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error) {
	token := uuid.NewString()
	ok, err = l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	release = func(ctx context.Context) error {
		err := releaseScript.Run(ctx, l.client, []string{key}, token).Err()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("redis release %s: %w", key, err)
		}
		return nil
	}
	return release, true, nil
}

// Close cierra el cliente.
func (l *Locker) Close() error {
	return l.client.Close()
}
