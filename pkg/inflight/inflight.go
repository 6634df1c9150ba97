// Package inflight - блокировки "действие уже выполняется" по id сущности.
// Вторая попытка по тому же id не ждет, а сразу получает отказ.
package inflight

import "sync"

type Locks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func New() *Locks {
	return &Locks{held: make(map[string]struct{})}
}

// Acquire занимает id. false - id уже занят.
func (l *Locks) Acquire(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[id]; busy {
		return false
	}
	l.held[id] = struct{}{}
	return true
}

func (l *Locks) Release(id string) {
	l.mu.Lock()
	delete(l.held, id)
	l.mu.Unlock()
}

// Do выполняет fn под блокировкой id и освобождает ее в любом случае.
// Если id занят, возвращает busy.
func (l *Locks) Do(id string, busy error, fn func() error) error {
	if !l.Acquire(id) {
		return busy
	}
	defer l.Release(id)
	return fn()
}
