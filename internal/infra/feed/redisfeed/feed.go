package redisfeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/infra/feed"
)

const (
	minBackoff = 100 * time.Millisecond
	maxBackoff = 5 * time.Second
)

// Feed лента изменений поверх Redis Pub/Sub, канал на каждую пару (площадка, дата)
type Feed struct {
	client redis.UniversalClient
	buffer int
	logger Logger
}

func New(client redis.UniversalClient, buffer int, logger Logger) *Feed {
	return &Feed{client: client, buffer: buffer, logger: logger}
}

// Publish публикует события одним пайплайном
func (f *Feed) Publish(ctx context.Context, changes ...domain.ReservationChange) error {
	if len(changes) == 0 {
		return nil
	}

	pipe := f.client.Pipeline()
	for _, change := range changes {
		payload, err := feed.Encode(change)
		if err != nil {
			return err
		}
		pipe.Publish(ctx, feed.Channel(change.Reservation.VenueID, change.Reservation.Date), payload)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", feed.ErrPublish, err)
	}
	return nil
}

// Subscribe подписывается на канал и дожидается подтверждения SUBSCRIBE от сервера
func (f *Feed) Subscribe(ctx context.Context, venueID int64, date time.Time) (feed.Subscription, error) {
	channel := feed.Channel(venueID, date)

	ps := f.client.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("%w: %s: %v", feed.ErrSubscribe, channel, err)
	}

	sub := &subscription{
		ps:      ps,
		channel: channel,
		sink:    feed.NewSink(f.buffer),
		logger:  f.logger,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go sub.run()

	return sub, nil
}

type subscription struct {
	ps      *redis.PubSub
	channel string
	sink    *feed.Sink
	logger  Logger

	once    sync.Once
	done    chan struct{}
	stopped chan struct{}
}

func (s *subscription) Changes() <-chan domain.ReservationChange {
	return s.sink.Changes()
}

func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
		<-s.stopped
	})
	return err
}

// run читает сообщения подписки. go-redis переподключается сам и заново выполняет SUBSCRIBE:
// повторное подтверждение подписки означает, что часть событий могла быть потеряна
func (s *subscription) run() {
	defer close(s.stopped)
	defer s.sink.Close()

	backoff := minBackoff
	for {
		msg, err := s.ps.Receive(context.Background())
		if err != nil {
			if s.isClosing() {
				return
			}
			s.logger.Warn("redisfeed: channel=%s: receive failed: %v", s.channel, err)
			s.sink.Resync()

			select {
			case <-s.done:
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff

		switch m := msg.(type) {
		case *redis.Subscription:
			if m.Kind == "subscribe" {
				s.logger.Info("redisfeed: channel=%s: resubscribed, requesting resync", s.channel)
				s.sink.Resync()
			}
		case *redis.Message:
			change, err := feed.Decode([]byte(m.Payload))
			if err != nil {
				s.logger.Error("redisfeed: channel=%s: %v", s.channel, err)
				s.sink.Resync()
				continue
			}
			if !s.sink.Push(change) {
				s.logger.Warn("redisfeed: channel=%s: subscriber lagging, event dropped", s.channel)
			}
		case *redis.Pong:
		}
	}
}

func (s *subscription) isClosing() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
