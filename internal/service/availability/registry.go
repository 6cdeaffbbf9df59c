package availability

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/infra/feed"
	"github.com/m04kA/SMC-CourtBooking/pkg/metrics"
)

// DefaultLoadTimeout таймаут загрузки снимка
const DefaultLoadTimeout = 5 * time.Second

// Config параметры реестра индексов
type Config struct {
	IdleTTL        time.Duration // индекс без обращений дольше IdleTTL выгружается
	ResyncInterval time.Duration // периодическое перечитывание снимка, 0 - выключено
	LoadTimeout    time.Duration
}

// Registry держит живые индексы занятости по ключу (площадка, дата)
// Каждый индекс: подписка на ленту, снимок из хранилища и горутина-потребитель
type Registry struct {
	store   ReservationStore
	feed    ChangeFeed
	cfg     Config
	clock   clockwork.Clock
	metrics *metrics.Metrics
	logger  Logger

	group   singleflight.Group
	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
}

// Option настройка реестра
type Option func(*Registry)

// WithClock подменяет часы (для тестов)
func WithClock(clock clockwork.Clock) Option {
	return func(r *Registry) { r.clock = clock }
}

// WithMetrics включает метрики реестра
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

func NewRegistry(store ReservationStore, changes ChangeFeed, cfg Config, logger Logger, opts ...Option) *Registry {
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}
	r := &Registry{
		store:   store,
		feed:    changes,
		cfg:     cfg,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type entry struct {
	key     string
	index   *Index
	sub     feed.Subscription
	refresh chan chan error

	stopOnce sync.Once
	stop     chan struct{}
	stopped  chan struct{}
	lastUsed atomic.Int64
}

func (e *entry) touch(now time.Time) {
	e.lastUsed.Store(now.UnixNano())
}

func keyOf(venueID int64, date time.Time) string {
	return fmt.Sprintf("%d/%s", venueID, domain.DateOnly(date).Format(domain.DateFormat))
}

// Get возвращает живой индекс, создавая его при первом обращении
// Порядок создания: подписка, затем снимок. Изменения, пришедшие во время загрузки,
// буферизуются в подписке и применяются после снимка (повторное применение безопасно)
func (r *Registry) Get(ctx context.Context, venueID int64, date time.Time) (*Index, error) {
	key := keyOf(venueID, date)

	e, err := r.lookup(key)
	if err != nil {
		return nil, err
	}
	if e != nil {
		return e.index, nil
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		if e, err := r.lookup(key); err != nil || e != nil {
			return e, err
		}

		// загрузка общая для всех ожидающих и не зависит от отмены первого из них
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.LoadTimeout)
		defer cancel()

		e, err := r.open(loadCtx, key, venueID, date)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			r.shutdown(e)
			return nil, ErrClosed
		}
		r.entries[key] = e
		live := len(r.entries)
		r.mu.Unlock()

		r.metrics.SetLiveIndexes(live)
		r.logger.Info("availability: index venue=%d date=%s loaded, %d live",
			venueID, domain.DateOnly(date).Format(domain.DateFormat), live)
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*entry).index, nil
}

// Refresh синхронно перечитывает снимок живого индекса
// Для ключа без индекса ничего не делает
func (r *Registry) Refresh(ctx context.Context, venueID int64, date time.Time) error {
	e, err := r.lookup(keyOf(venueID, date))
	if err != nil || e == nil {
		return err
	}

	reply := make(chan error, 1)
	select {
	case e.refresh <- reply:
	case <-e.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EvictIdle выгружает индексы без обращений дольше IdleTTL. Возвращает число выгруженных
func (r *Registry) EvictIdle() int {
	if r.cfg.IdleTTL <= 0 {
		return 0
	}
	deadline := r.clock.Now().Add(-r.cfg.IdleTTL).UnixNano()

	r.mu.Lock()
	idle := make([]*entry, 0)
	for key, e := range r.entries {
		if e.lastUsed.Load() <= deadline {
			idle = append(idle, e)
			delete(r.entries, key)
		}
	}
	live := len(r.entries)
	r.mu.Unlock()

	for _, e := range idle {
		r.shutdown(e)
	}
	if len(idle) > 0 {
		r.metrics.SetLiveIndexes(live)
		r.logger.Info("availability: evicted %d idle indexes, %d live", len(idle), live)
	}
	return len(idle)
}

// Len количество живых индексов
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close останавливает все потребители и закрывает подписки
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		r.shutdown(e)
	}
	r.metrics.SetLiveIndexes(0)
}

func (r *Registry) lookup(key string) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	e, ok := r.entries[key]
	if !ok {
		return nil, nil
	}
	e.touch(r.clock.Now())
	return e, nil
}

func (r *Registry) open(ctx context.Context, key string, venueID int64, date time.Time) (*entry, error) {
	sub, err := r.feed.Subscribe(ctx, venueID, date)
	if err != nil {
		r.logger.Error("availability: subscribe venue=%d: %v", venueID, err)
		return nil, fmt.Errorf("%w: %v", ErrSubscribe, err)
	}

	reservations, err := r.store.QueryReservations(ctx, venueID, date)
	if err != nil {
		_ = sub.Close()
		r.logger.Error("availability: snapshot venue=%d: %v", venueID, err)
		return nil, fmt.Errorf("%w: %v", ErrSnapshot, err)
	}

	index := NewIndex(venueID, date)
	index.Load(reservations)

	e := &entry{
		key:     key,
		index:   index,
		sub:     sub,
		refresh: make(chan chan error),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	e.touch(r.clock.Now())

	go r.consume(e)
	return e, nil
}

// consume единственная горутина, меняющая индекс после загрузки
func (r *Registry) consume(e *entry) {
	defer close(e.stopped)

	var resync <-chan time.Time
	if r.cfg.ResyncInterval > 0 {
		ticker := r.clock.NewTicker(r.cfg.ResyncInterval)
		defer ticker.Stop()
		resync = ticker.Chan()
	}

	changes := e.sub.Changes()
	for {
		select {
		case <-e.stop:
			return
		case change, ok := <-changes:
			if !ok {
				r.logger.Warn("availability: feed closed for %s, dropping index", e.key)
				r.detach(e)
				return
			}
			if change.Kind == domain.ChangeResync {
				_ = r.reload(e, "feed gap")
				continue
			}
			if e.index.Apply(change) {
				r.metrics.IncFeedEvent(string(change.Kind))
			}
		case <-resync:
			_ = r.reload(e, "periodic")
		case reply := <-e.refresh:
			reply <- r.reload(e, "refresh")
		}
	}
}

func (r *Registry) reload(e *entry, reason string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.LoadTimeout)
	defer cancel()

	reservations, err := r.store.QueryReservations(ctx, e.index.VenueID, e.index.Date)
	if err != nil {
		r.logger.Error("availability: reload %s (%s): %v", e.key, reason, err)
		return fmt.Errorf("%w: %v", ErrSnapshot, err)
	}

	e.index.Load(reservations)
	r.metrics.IncIndexResync()
	return nil
}

// detach убирает индекс, чья подписка закрылась, чтобы следующий Get создал новый
func (r *Registry) detach(e *entry) {
	r.mu.Lock()
	if cur, ok := r.entries[e.key]; ok && cur == e {
		delete(r.entries, e.key)
	}
	live := len(r.entries)
	r.mu.Unlock()

	_ = e.sub.Close()
	r.metrics.SetLiveIndexes(live)
}

func (r *Registry) shutdown(e *entry) {
	e.stopOnce.Do(func() { close(e.stop) })
	<-e.stopped
	if err := e.sub.Close(); err != nil {
		r.logger.Warn("availability: close subscription %s: %v", e.key, err)
	}
}
