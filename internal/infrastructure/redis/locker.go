package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Locker lease por documento sobre Redis (SET NX con TTL). Sirve con varias instancias de la API.
type Locker struct {
	client    *redislock.Client
	ttl       time.Duration
	namespace string
}

// NewLocker crea el locker. ttl acota cuánto sobrevive un lease si el proceso muere.
func NewLocker(rdb redis.UniversalClient, namespace string, ttl time.Duration) *Locker {
	return &Locker{client: redislock.New(rdb), ttl: ttl, namespace: namespace}
}

// Acquire no espera: si otro proceso tiene la clave devuelve domain.ErrConfirmationInProgress.
func (l *Locker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, l.key(key), l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ErrConfirmationInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("obtain redis lock: %w", err)
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("release redis lock: %w", err)
		}
		return nil
	}, nil
}

func (l *Locker) key(key string) string {
	if l.namespace == "" {
		return key
	}
	return l.namespace + ":" + key
}
