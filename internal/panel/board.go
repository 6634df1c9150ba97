package panel

import (
	"context"
	"sync"
	"trainer-availability/internal/livesync"
	"trainer-availability/pkg/calendar"

	"github.com/sirupsen/logrus"
)

// board - общая часть панелей: сетка, загрузка окна и подписка на изменения
type board struct {
	window calendar.EditWindow
	view   *Window
	logger *logrus.Logger

	mu          sync.Mutex
	grid        Grid
	unsubscribe func()
}

func newBoard(backend Backend, withRequests bool, window calendar.EditWindow, logger *logrus.Logger) *board {
	if logger == nil {
		logger = logrus.New()
	}
	return &board{
		window: window,
		view:   NewWindow(backend, withRequests, logger),
		logger: logger,
		grid:   NewGrid(calendar.PeriodMonth, window.Today()),
	}
}

func (b *board) subscribe(sub Subscriber) {
	if sub == nil {
		return
	}
	b.unsubscribe = sub.Subscribe(livesync.TopicTrainerAvailability, func(string) {
		b.Refresh(context.Background())
	})
}

// Grid - текущее состояние сетки
func (b *board) Grid() Grid {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.grid
}

// Refresh перечитывает текущее окно
func (b *board) Refresh(ctx context.Context) {
	from, to := b.Grid().Bounds()
	b.view.Load(ctx, from, to)
}

func (b *board) navigate(ctx context.Context, step func(Grid) Grid) Grid {
	b.mu.Lock()
	b.grid = step(b.grid)
	g := b.grid
	b.mu.Unlock()

	b.Refresh(ctx)
	return g
}

func (b *board) SetPeriod(ctx context.Context, p calendar.Period) Grid {
	return b.navigate(ctx, func(g Grid) Grid { return g.SetPeriod(p) })
}

func (b *board) Prev(ctx context.Context) Grid {
	return b.navigate(ctx, Grid.Prev)
}

func (b *board) Next(ctx context.Context) Grid {
	return b.navigate(ctx, Grid.Next)
}

func (b *board) GoToCurrent(ctx context.Context) Grid {
	today := b.window.Today()
	return b.navigate(ctx, func(g Grid) Grid { return g.GoToCurrent(today) })
}

// Floor - первая редактируемая дата
func (b *board) Floor() calendar.Date {
	return b.window.Floor()
}

// Close отписывает панель от сигналов
func (b *board) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}
