package pgfeed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/infra/feed"
	"github.com/m04kA/SMC-CourtBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBooking/pkg/psqlbuilder"
)

// Config параметры слушателя
type Config struct {
	MinReconnectInterval time.Duration
	MaxReconnectInterval time.Duration
	PingInterval         time.Duration
	Buffer               int
}

func (c Config) withDefaults() Config {
	if c.MinReconnectInterval <= 0 {
		c.MinReconnectInterval = 100 * time.Millisecond
	}
	if c.MaxReconnectInterval <= 0 {
		c.MaxReconnectInterval = 10 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 90 * time.Second
	}
	return c
}

// Feed лента изменений поверх LISTEN/NOTIFY
// Одно соединение pq.Listener обслуживает все подписки, события раздаются по имени канала
type Feed struct {
	db       DBExecutor
	listener *pq.Listener
	cfg      Config
	logger   Logger

	// listenMu сериализует LISTEN/UNLISTEN; mu защищает subs.
	// Listen не вызывается под mu: иначе run() не сможет разобрать Notify и соединение встанет
	listenMu sync.Mutex
	mu       sync.Mutex
	subs     map[string]map[*subscription]struct{}
	closed   bool

	done    chan struct{}
	stopped chan struct{}
}

// New открывает слушателя по dsn. db используется для публикации через pg_notify
func New(dsn string, db DBExecutor, cfg Config, logger Logger) *Feed {
	cfg = cfg.withDefaults()
	f := &Feed{
		db:      db,
		cfg:     cfg,
		logger:  logger,
		subs:    make(map[string]map[*subscription]struct{}),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	f.listener = pq.NewListener(dsn, cfg.MinReconnectInterval, cfg.MaxReconnectInterval, f.onEvent)
	go f.run()
	return f
}

// Publish отправляет события через pg_notify
// Внутри транзакции из контекста уведомления будут доставлены только после её фиксации
func (f *Feed) Publish(ctx context.Context, changes ...domain.ReservationChange) error {
	executor := dbmetrics.GetExecutor(ctx, f.db)

	for _, change := range changes {
		payload, err := feed.Encode(change)
		if err != nil {
			return err
		}

		channel := feed.Channel(change.Reservation.VenueID, change.Reservation.Date)
		query, args, err := psqlbuilder.Select().
			Column(squirrel.Expr("pg_notify(?, ?)", channel, string(payload))).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: build notify query: %v", feed.ErrPublish, err)
		}

		if _, err := executor.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: notify %s: %v", feed.ErrPublish, channel, err)
		}
	}

	return nil
}

// Subscribe подписывается на изменения площадки за дату
// Возвращается только после того, как LISTEN выполнен на сервере
func (f *Feed) Subscribe(ctx context.Context, venueID int64, date time.Time) (feed.Subscription, error) {
	channel := feed.Channel(venueID, date)

	f.listenMu.Lock()
	defer f.listenMu.Unlock()

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, feed.ErrClosed
	}
	_, listening := f.subs[channel]
	f.mu.Unlock()

	if !listening {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", feed.ErrSubscribe, channel, err)
		}
		if err := f.listener.Listen(channel); err != nil && !errors.Is(err, pq.ErrChannelAlreadyOpen) {
			return nil, fmt.Errorf("%w: listen %s: %v", feed.ErrSubscribe, channel, err)
		}
	}

	sub := &subscription{feed: f, channel: channel, sink: feed.NewSink(f.cfg.Buffer)}

	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.subs[channel]
	if !ok {
		set = make(map[*subscription]struct{})
		f.subs[channel] = set
	}
	set[sub] = struct{}{}

	return sub, nil
}

// Close останавливает слушателя и закрывает все подписки
func (f *Feed) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	subs := f.subs
	f.subs = make(map[string]map[*subscription]struct{})
	f.mu.Unlock()

	close(f.done)
	<-f.stopped
	err := f.listener.Close()

	for _, set := range subs {
		for sub := range set {
			sub.sink.Close()
		}
	}
	return err
}

func (f *Feed) run() {
	defer close(f.stopped)

	ticker := time.NewTicker(f.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case n, ok := <-f.listener.Notify:
			if !ok {
				return
			}
			// nil приходит после переподключения: события за время разрыва потеряны
			if n == nil {
				f.logger.Warn("pgfeed: listener reconnected, requesting resync of %d channels", f.channelCount())
				f.broadcastResync()
				continue
			}
			f.dispatch(n.Channel, n.Extra)
		case <-ticker.C:
			go func() {
				if err := f.listener.Ping(); err != nil {
					f.logger.Warn("pgfeed: ping failed: %v", err)
				}
			}()
		}
	}
}

func (f *Feed) dispatch(channel, payload string) {
	change, err := feed.Decode([]byte(payload))

	f.mu.Lock()
	defer f.mu.Unlock()

	set := f.subs[channel]
	if err != nil {
		f.logger.Error("pgfeed: channel=%s: %v", channel, err)
		for sub := range set {
			sub.sink.Resync()
		}
		return
	}

	for sub := range set {
		if !sub.sink.Push(change) {
			f.logger.Warn("pgfeed: channel=%s: subscriber lagging, event dropped", channel)
		}
	}
}

func (f *Feed) broadcastResync() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, set := range f.subs {
		for sub := range set {
			sub.sink.Resync()
		}
	}
}

func (f *Feed) channelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *Feed) onEvent(event pq.ListenerEventType, err error) {
	switch event {
	case pq.ListenerEventConnected:
		f.logger.Info("pgfeed: listener connected")
	case pq.ListenerEventDisconnected:
		f.logger.Warn("pgfeed: listener disconnected: %v", err)
	case pq.ListenerEventReconnected:
		f.logger.Info("pgfeed: listener reconnected")
	case pq.ListenerEventConnectionAttemptFailed:
		f.logger.Error("pgfeed: connection attempt failed: %v", err)
	}
}

func (f *Feed) unsubscribe(sub *subscription) error {
	f.listenMu.Lock()
	defer f.listenMu.Unlock()

	f.mu.Lock()
	set, ok := f.subs[sub.channel]
	if !ok {
		f.mu.Unlock()
		return nil
	}
	delete(set, sub)
	last := len(set) == 0
	if last {
		delete(f.subs, sub.channel)
	}
	f.mu.Unlock()

	if !last {
		return nil
	}
	if err := f.listener.Unlisten(sub.channel); err != nil && !errors.Is(err, pq.ErrChannelNotOpen) {
		return fmt.Errorf("pgfeed: unlisten %s: %w", sub.channel, err)
	}
	return nil
}

type subscription struct {
	feed    *Feed
	channel string
	sink    *feed.Sink
	once    sync.Once
}

func (s *subscription) Changes() <-chan domain.ReservationChange {
	return s.sink.Changes()
}

func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		err = s.feed.unsubscribe(s)
		s.sink.Close()
	})
	return err
}
