// Package locker provides provider-scoped mutual exclusion for booking writes.
// Acquisition waits a bounded time and fails fast with ErrLockTimeout instead of queueing.
package locker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Unlock освобождает блокировку; повторный вызов безопасен
type Unlock func()

// ProviderKey ключ блокировки расписания мастера
func ProviderKey(providerID int64) string {
	return fmt.Sprintf("booking:provider:%d", providerID)
}

// MemoryLocker блокировки внутри одного процесса
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]chan struct{})}
}

func (l *MemoryLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

// Lock захватывает key, ожидая не дольше wait
func (l *MemoryLocker) Lock(ctx context.Context, key string, wait time.Duration) (Unlock, error) {
	ch := l.slot(key)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
	case <-timer.C:
		return nil, fmt.Errorf("%w: key=%s", ErrLockTimeout, key)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-ch })
	}, nil
}
