package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/bodega-api/internal/domain"
)

// Locker lease en proceso por clave. Sirve cuando no hay Redis configurado (una sola instancia).
type Locker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocker crea el locker.
func NewLocker() *Locker {
	return &Locker{held: map[string]struct{}{}}
}

// Acquire toma la clave sin esperar; si ya está tomada devuelve domain.ErrConfirmationInProgress.
func (l *Locker) Acquire(_ context.Context, key string) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, domain.ErrConfirmationInProgress
	}
	l.held[key] = struct{}{}
	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}, nil
}
