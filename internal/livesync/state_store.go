package livesync

import "sync"

// Key - состояние хранится по паре (пользователь, тема)
type Key struct {
	UserID string
	Topic  string
}

// StateStore - явное хранилище состояния вместо глобальных кэшей.
// Значение создается через Init и удаляется через Teardown.
type StateStore[V any] struct {
	mu       sync.Mutex
	values   map[Key]V
	teardown func(Key, V)
}

// NewStateStore создает хранилище, teardown вызывается для каждого удаляемого значения
func NewStateStore[V any](teardown func(Key, V)) *StateStore[V] {
	return &StateStore[V]{
		values:   make(map[Key]V),
		teardown: teardown,
	}
}

// Init возвращает существующее значение или создает его через create.
// create выполняется без блокировки хранилища: другие ключи в это время доступны.
// Если два вызова создали значение для одного ключа, остается первое,
// второе сразу уходит в teardown.
func (s *StateStore[V]) Init(key Key, create func() V) V {
	if v, ok := s.Get(key); ok {
		return v
	}

	v := create()

	s.mu.Lock()
	if existing, ok := s.values[key]; ok {
		s.mu.Unlock()
		if s.teardown != nil {
			s.teardown(key, v)
		}
		return existing
	}
	s.values[key] = v
	s.mu.Unlock()
	return v
}

func (s *StateStore[V]) Get(key Key) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Teardown удаляет значение и вызывает teardown
func (s *StateStore[V]) Teardown(key Key) {
	s.mu.Lock()
	v, ok := s.values[key]
	delete(s.values, key)
	s.mu.Unlock()

	if ok && s.teardown != nil {
		s.teardown(key, v)
	}
}

// TeardownAll удаляет все значения, например при остановке сервиса
func (s *StateStore[V]) TeardownAll() {
	s.mu.Lock()
	values := s.values
	s.values = make(map[Key]V)
	s.mu.Unlock()

	if s.teardown == nil {
		return
	}
	for k, v := range values {
		s.teardown(k, v)
	}
}
