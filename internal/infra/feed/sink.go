package feed

import (
	"sync"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// DefaultBuffer размер буфера подписки по умолчанию
const DefaultBuffer = 256

var resync = domain.ReservationChange{Kind: domain.ChangeResync}

// Sink буферизованный канал событий одной подписки
// Драйвер никогда не блокируется на медленном потребителе: при переполнении событие
// отбрасывается, а перед следующим доставленным событием в канал кладётся ChangeResync
type Sink struct {
	mu     sync.Mutex
	ch     chan domain.ReservationChange
	gap    bool
	closed bool
}

func NewSink(buffer int) *Sink {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Sink{ch: make(chan domain.ReservationChange, buffer)}
}

// Changes канал событий для потребителя
func (s *Sink) Changes() <-chan domain.ReservationChange {
	return s.ch
}

// Push кладёт событие в буфер. Возвращает false, если событие отброшено
func (s *Sink) Push(change domain.ReservationChange) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	if s.gap {
		select {
		case s.ch <- resync:
			s.gap = false
		default:
			return false
		}
		if change.Kind == domain.ChangeResync {
			return true
		}
	}

	select {
	case s.ch <- change:
		return true
	default:
		s.gap = true
		return false
	}
}

// Resync сообщает потребителю о разрыве ленты
func (s *Sink) Resync() {
	s.Push(resync)
}

// Close закрывает канал. Повторный вызов безопасен
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
