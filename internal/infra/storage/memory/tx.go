package memory

import (
	"context"
)

type txKey struct{}

// TxManager транзакции in-memory хранилища
// Транзакции выполняются строго последовательно; при ошибке состояние откатывается к снимку
type TxManager struct {
	s *Store
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()

	m.s.mu.RLock()
	snapshot := m.s.data.clone()
	m.s.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			m.restore(snapshot)
			panic(p)
		}
		if err != nil {
			m.restore(snapshot)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}

func (m *TxManager) restore(snapshot state) {
	m.s.mu.Lock()
	m.s.data = snapshot
	m.s.mu.Unlock()
}

// lockWrite блокирует состояние на запись
// Вне транзакции дополнительно ждёт завершения текущей транзакции, чтобы её откат не затёр запись
func (s *Store) lockWrite(ctx context.Context) func() {
	if ctx.Value(txKey{}) == nil {
		s.txMu.Lock()
		s.mu.Lock()
		return func() {
			s.mu.Unlock()
			s.txMu.Unlock()
		}
	}
	s.mu.Lock()
	return s.mu.Unlock
}
