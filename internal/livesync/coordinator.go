// Package livesync рассылает сигналы "тема изменилась", чтобы календарь
// тренера и сетка администратора перечитывали данные сразу после изменений.
package livesync

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TopicTrainerAvailability - слоты, заявки на отсутствие и все, что влияет на DayStatus
const TopicTrainerAvailability = "trainer_availability"

type Callback func(topic string)

// Invalidator - то, что нужно сервисам: сигнал после успешного изменения
type Invalidator interface {
	Invalidate(topic string)
}

type Coordinator struct {
	mu       sync.Mutex
	subs     map[string]map[uuid.UUID]Callback
	timers   map[string]*time.Timer
	debounce time.Duration
	closed   bool
	logger   *logrus.Logger
}

// NewCoordinator создает координатор. Повторные сигналы по одной теме
// в пределах debounce схлопываются в один вызов подписчиков.
func NewCoordinator(debounce time.Duration, logger *logrus.Logger) *Coordinator {
	if logger == nil {
		logger = logrus.New()
	}
	return &Coordinator{
		subs:     make(map[string]map[uuid.UUID]Callback),
		timers:   make(map[string]*time.Timer),
		debounce: debounce,
		logger:   logger,
	}
}

// Subscribe подписывает cb на тему и возвращает функцию отписки
func (c *Coordinator) Subscribe(topic string, cb Callback) (unsubscribe func()) {
	id := uuid.New()

	c.mu.Lock()
	byID, ok := c.subs[topic]
	if !ok {
		byID = make(map[uuid.UUID]Callback)
		c.subs[topic] = byID
	}
	byID[id] = cb
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"topic":        topic,
		"subscription": id.String(),
	}).Debug("Subscribed to topic")

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs[topic], id)
			if len(c.subs[topic]) == 0 {
				delete(c.subs, topic)
			}
			c.mu.Unlock()
		})
	}
}

// Invalidate сообщает, что тема изменилась
func (c *Coordinator) Invalidate(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	if c.debounce <= 0 {
		go c.fire(topic)
		return
	}

	if prev, ok := c.timers[topic]; ok {
		prev.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		current := c.timers[topic] == timer
		if current {
			delete(c.timers, topic)
		}
		c.mu.Unlock()
		// таймер мог быть заменен новым сигналом, пока ждал блокировку
		if current {
			c.fire(topic)
		}
	})
	c.timers[topic] = timer
}

func (c *Coordinator) fire(topic string) {
	c.mu.Lock()
	callbacks := make([]Callback, 0, len(c.subs[topic]))
	for _, cb := range c.subs[topic] {
		callbacks = append(callbacks, cb)
	}
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"topic":       topic,
		"subscribers": len(callbacks),
	}).Debug("Topic invalidated")

	for _, cb := range callbacks {
		cb(topic)
	}
}

// Close останавливает отложенные сигналы, новые сигналы игнорируются
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for topic, t := range c.timers {
		t.Stop()
		delete(c.timers, topic)
	}
}
