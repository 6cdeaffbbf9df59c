package commit_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	userClient "github.com/m04kA/SMC-CourtBooking/internal/integrations/userservice"
	"github.com/m04kA/SMC-CourtBooking/internal/service/pricing"
	"github.com/m04kA/SMC-CourtBooking/internal/service/venues"
	"github.com/m04kA/SMC-CourtBooking/pkg/metrics"
)

// DefaultCommitTimeout ограничение на коммит, если не задано в конфигурации
const DefaultCommitTimeout = 10 * time.Second

// UseCase use case для атомарного коммита выбора слотов
type UseCase struct {
	store         ReservationStore
	venues        VenueDirectory
	registry      AvailabilityRegistry
	publisher     ChangePublisher
	userClient    UserServiceClient
	commitTimeout time.Duration
	clock         clockwork.Clock
	metrics       *metrics.Metrics
	logger        Logger
}

// Option настройка usecase
type Option func(*UseCase)

// WithClock подменяет часы (для тестов)
func WithClock(clock clockwork.Clock) Option {
	return func(uc *UseCase) { uc.clock = clock }
}

// WithMetrics включает метрики коммитов
func WithMetrics(m *metrics.Metrics) Option {
	return func(uc *UseCase) { uc.metrics = m }
}

// WithUserClient включает проверку пользователя в UserService
func WithUserClient(client UserServiceClient) Option {
	return func(uc *UseCase) { uc.userClient = client }
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	store ReservationStore,
	venues VenueDirectory,
	registry AvailabilityRegistry,
	publisher ChangePublisher,
	commitTimeout time.Duration,
	logger Logger,
	opts ...Option,
) *UseCase {
	if commitTimeout <= 0 {
		commitTimeout = DefaultCommitTimeout
	}

	uc := &UseCase{
		store:         store,
		venues:        venues,
		registry:      registry,
		publisher:     publisher,
		commitTimeout: commitTimeout,
		clock:         clockwork.NewRealClock(),
		logger:        logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute выполняет коммит выбора
// Либо фиксируются все слоты, либо ни одного: проигравшие слоты перечислены в ErrSlotConflict
// Коммит не прерывается отменой запроса клиентом, его ограничивает только commitTimeout
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CommitBooking: user=%d, venue=%d, date=%s, slots=%d",
		req.UserID, req.VenueID, req.Date.Format(domain.DateFormat), len(req.Slots))

	// 1. Валидация входных данных
	if err := validateRequest(req, uc.clock.Now()); err != nil {
		uc.logger.Warn("CommitBooking: validation failed: %v", err)
		uc.metrics.IncBookingCommit(metrics.OutcomeRejected)
		return nil, err
	}

	// 2. Проверяем пользователя
	if err := uc.checkUser(ctx, req.UserID); err != nil {
		uc.metrics.IncBookingCommit(metrics.OutcomeRejected)
		return nil, err
	}

	// 3. Получаем площадку с таблицей тарифов
	venue, err := uc.venues.Get(ctx, req.VenueID)
	if err != nil {
		uc.metrics.IncBookingCommit(metrics.OutcomeRejected)
		if errors.Is(err, venues.ErrVenueNotFound) {
			uc.logger.Warn("CommitBooking: venue id=%d not found", req.VenueID)
			return nil, ErrVenueNotFound
		}
		uc.logger.Error("CommitBooking: failed to get venue id=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: failed to get venue: %v", ErrInternal, err)
	}

	date := domain.DateOnly(req.Date)

	// 4. Собираем выбор по живому индексу занятости
	index, err := uc.registry.Get(ctx, venue.ID, date)
	if err != nil {
		uc.logger.Error("CommitBooking: failed to get availability for venue=%d: %v", venue.ID, err)
		uc.metrics.IncBookingCommit(metrics.OutcomeFailure)
		return nil, fmt.Errorf("%w: failed to get availability: %v", ErrInternal, err)
	}

	selection, err := domain.BuildSelection(venue.ID, date, venue.CourtCount, req.Slots, index)
	if err != nil {
		uc.logger.Warn("CommitBooking: selection rejected: %v", err)
		if errors.Is(err, domain.ErrSlotUnavailable) {
			uc.metrics.IncBookingCommit(metrics.OutcomeUnavailable)
		} else {
			uc.metrics.IncBookingCommit(metrics.OutcomeRejected)
		}
		return nil, mapDomainError(err)
	}

	// 5. Считаем стоимость до обращения к хранилищу
	total, err := pricing.Compute(selection, venue.Pricing)
	if err != nil {
		uc.logger.Warn("CommitBooking: pricing failed for venue=%d: %v", venue.ID, err)
		uc.metrics.IncBookingCommit(metrics.OutcomeRejected)
		return nil, mapDomainError(err)
	}

	if err := validateOpenHours(venue, selection); err != nil {
		uc.logger.Warn("CommitBooking: %v", err)
		uc.metrics.IncBookingCommit(metrics.OutcomeUnavailable)
		return nil, err
	}

	// 6. Назначаем transaction_id
	transactionID := uuid.New()
	if req.TransactionID != nil {
		transactionID = *req.TransactionID
	}

	cmd := domain.CommitCommand{
		TransactionID: transactionID,
		VenueID:       venue.ID,
		UserID:        req.UserID,
		Date:          date,
		Slots:         selection.Slots(),
		TotalPrice:    total,
	}

	// 7. Условный коммит на контексте, отвязанном от отмены запроса
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.commitTimeout)
	defer cancel()

	result, err := uc.store.ConditionalCommit(commitCtx, cmd)
	if err != nil {
		return nil, uc.handleCommitError(commitCtx, cmd, err)
	}

	if result.Replayed {
		if !matchesReplay(cmd, result.Reservations) {
			uc.logger.Warn("CommitBooking: transaction=%s replayed with different selection", transactionID)
			uc.metrics.IncBookingCommit(metrics.OutcomeRejected)
			return nil, ErrIdempotencyMismatch
		}
		if !replayActive(result.Reservations) {
			uc.logger.Warn("CommitBooking: transaction=%s replayed after cancellation", transactionID)
			uc.metrics.IncBookingCommit(metrics.OutcomeRejected)
			return nil, ErrTransactionCancelled
		}
		uc.logger.Info("CommitBooking: transaction=%s already committed, returning stored reservations", transactionID)
		uc.metrics.IncBookingCommit(metrics.OutcomeReplayed)
		return uc.response(cmd, result), nil
	}

	// 8. Публикуем новые брони в ленту
	if err := uc.publisher.Publish(commitCtx, domain.ChangesFor(domain.ChangeCreated, result.Reservations)...); err != nil {
		uc.logger.Warn("CommitBooking: failed to publish changes for transaction=%s: %v", transactionID, err)
		uc.refresh(commitCtx, cmd)
	}

	uc.metrics.IncBookingCommit(metrics.OutcomeCommitted)
	uc.logger.Info("CommitBooking: committed transaction=%s, %d slots, total=%d",
		transactionID, len(result.Reservations), total)

	return uc.response(cmd, result), nil
}

// handleCommitError разбирает ошибку условного коммита
// Конфликт обновляет индекс, чтобы следующий выбор видел занятые слоты
func (uc *UseCase) handleCommitError(ctx context.Context, cmd domain.CommitCommand, err error) error {
	var conflict *domain.SlotConflictError
	if errors.As(err, &conflict) {
		uc.logger.Warn("CommitBooking: transaction=%s lost %d slots: %v", cmd.TransactionID, len(conflict.Slots), err)
		uc.metrics.IncBookingCommit(metrics.OutcomeConflict)
		uc.metrics.AddConflictedSlots(len(conflict.Slots))
		uc.refresh(ctx, cmd)
		return fmt.Errorf("%w: %w", ErrSlotConflict, conflict)
	}

	uc.logger.Error("CommitBooking: store failure for transaction=%s, outcome unknown: %v", cmd.TransactionID, err)
	uc.metrics.IncBookingCommit(metrics.OutcomeFailure)
	return fmt.Errorf("%w: transaction=%s: %v", ErrPersistenceFailure, cmd.TransactionID, err)
}

func (uc *UseCase) refresh(ctx context.Context, cmd domain.CommitCommand) {
	if err := uc.registry.Refresh(ctx, cmd.VenueID, cmd.Date); err != nil {
		uc.logger.Warn("CommitBooking: failed to refresh availability for venue=%d: %v", cmd.VenueID, err)
	}
}

// checkUser проверяет пользователя в UserService
// При недоступности сервиса коммит продолжается: X-User-ID уже прошёл middleware
func (uc *UseCase) checkUser(ctx context.Context, userID int64) error {
	if uc.userClient == nil {
		return nil
	}

	_, err := uc.userClient.GetUserWithGracefulDegradation(ctx, userID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, userClient.ErrUserNotFound):
		uc.logger.Warn("CommitBooking: user id=%d not found", userID)
		return fmt.Errorf("%w: user %d not found", ErrUnauthenticated, userID)
	case errors.Is(err, userClient.ErrServiceDegraded):
		uc.logger.Warn("CommitBooking: proceeding without user check for user id=%d", userID)
		return nil
	default:
		uc.logger.Error("CommitBooking: failed to check user id=%d: %v", userID, err)
		return fmt.Errorf("%w: failed to check user: %v", ErrInternal, err)
	}
}

func (uc *UseCase) response(cmd domain.CommitCommand, result *domain.CommitResult) *Response {
	resp := &Response{
		TransactionID: cmd.TransactionID,
		VenueID:       cmd.VenueID,
		UserID:        cmd.UserID,
		Date:          cmd.Date,
		TotalPrice:    cmd.TotalPrice,
		Reservations:  result.Reservations,
		Replayed:      result.Replayed,
	}
	if len(result.Reservations) > 0 {
		resp.TotalPrice = result.Reservations[0].TotalPrice
	}
	return resp
}
