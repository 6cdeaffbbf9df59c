package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	reservationRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-CourtBooking/internal/service/reservations/models"
	"github.com/m04kA/SMC-CourtBooking/internal/service/venues"
)

// Service сервис для чтения и отмены броней
type Service struct {
	reservationRepo ReservationRepository
	venues          VenueDirectory
	publisher       ChangePublisher
	logger          Logger
}

// NewService создает новый экземпляр сервиса броней
func NewService(
	reservationRepo ReservationRepository,
	venues VenueDirectory,
	publisher ChangePublisher,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		venues:          venues,
		publisher:       publisher,
		logger:          logger,
	}
}

// GetTransaction получает транзакцию бронирования по ID
// Видна владельцу и менеджерам площадки
func (s *Service) GetTransaction(ctx context.Context, transactionID uuid.UUID, userID int64) (*models.TransactionResponse, error) {
	s.logger.Info("GetTransaction: fetching transaction=%s for user=%d", transactionID, userID)

	reservations, err := s.getTransaction(ctx, transactionID, "GetTransaction")
	if err != nil {
		return nil, err
	}

	if err := s.checkUserAccess(ctx, reservations[0], userID); err != nil {
		s.logger.Warn("GetTransaction: access denied for user=%d to transaction=%s", userID, transactionID)
		return nil, err
	}

	return models.FromDomainTransaction(reservations), nil
}

// GetUserReservations получает историю бронирований пользователя, сгруппированную по транзакциям
func (s *Service) GetUserReservations(ctx context.Context, req *models.GetUserReservationsRequest) (*models.TransactionListResponse, error) {
	s.logger.Info("GetUserReservations: fetching reservations for user=%d, includeInactive=%t", req.UserID, req.IncludeInactive)

	reservations, err := s.reservationRepo.GetByUser(ctx, req.UserID, req.IncludeInactive)
	if err != nil {
		s.logger.Error("GetUserReservations: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserReservations - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserReservations: fetched %d reservations for user=%d", len(reservations), req.UserID)
	return models.GroupByTransaction(reservations), nil
}

// GetVenueReservations получает брони площадки за дату
// Доступно только менеджерам площадки
func (s *Service) GetVenueReservations(ctx context.Context, req *models.GetVenueReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetVenueReservations: fetching reservations for venue=%d, date=%s, user=%d",
		req.VenueID, req.Date.Format(domain.DateFormat), req.UserID)

	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if err := s.checkManagerAccess(ctx, req.VenueID, req.UserID); err != nil {
		return nil, err
	}

	reservations, err := s.reservationRepo.GetByVenueWithFilter(ctx, req.ToDomainFilter())
	if err != nil {
		s.logger.Error("GetVenueReservations: repository error for venue=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: GetVenueReservations - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetVenueReservations: fetched %d reservations for venue=%d", len(reservations), req.VenueID)
	return models.FromDomainReservationList(reservations), nil
}

// CancelTransaction отменяет все активные брони транзакции
// Владелец может отменить свою транзакцию, менеджер - любую транзакцию площадки
// Освобождённые слоты публикуются в ленту изменений
func (s *Service) CancelTransaction(ctx context.Context, transactionID uuid.UUID, userID int64) (*models.TransactionResponse, error) {
	s.logger.Info("CancelTransaction: cancelling transaction=%s by user=%d", transactionID, userID)

	reservations, err := s.getTransaction(ctx, transactionID, "CancelTransaction")
	if err != nil {
		return nil, err
	}

	if err := s.checkUserAccess(ctx, reservations[0], userID); err != nil {
		s.logger.Warn("CancelTransaction: access denied for user=%d to transaction=%s", userID, transactionID)
		return nil, err
	}

	cancelled, err := s.reservationRepo.CancelTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrNothingToCancel) {
			s.logger.Warn("CancelTransaction: transaction=%s has no active reservations", transactionID)
			return nil, ErrCannotCancel
		}
		s.logger.Error("CancelTransaction: repository error for transaction=%s: %v", transactionID, err)
		return nil, fmt.Errorf("%w: CancelTransaction - repository error: %v", ErrInternal, err)
	}

	// Отмена уже зафиксирована: ошибка публикации не отменяет результат,
	// индексы догонят состояние при следующей пересинхронизации
	if err := s.publisher.Publish(ctx, domain.ChangesFor(domain.ChangeCancelled, cancelled)...); err != nil {
		s.logger.Warn("CancelTransaction: failed to publish changes for transaction=%s: %v", transactionID, err)
	}

	s.logger.Info("CancelTransaction: cancelled %d reservations of transaction=%s", len(cancelled), transactionID)
	return models.FromDomainTransaction(cancelled), nil
}

// Вспомогательные методы

func (s *Service) getTransaction(ctx context.Context, transactionID uuid.UUID, op string) ([]*domain.Reservation, error) {
	reservations, err := s.reservationRepo.GetByTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: transaction=%s not found", op, transactionID)
			return nil, ErrTransactionNotFound
		}
		s.logger.Error("%s: repository error for transaction=%s: %v", op, transactionID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return reservations, nil
}

// checkUserAccess проверяет, что пользователь - владелец брони или менеджер площадки
func (s *Service) checkUserAccess(ctx context.Context, reservation *domain.Reservation, userID int64) error {
	if reservation.UserID == userID {
		return nil
	}

	if err := s.checkManagerAccess(ctx, reservation.VenueID, userID); err != nil {
		if errors.Is(err, ErrInternal) {
			return err
		}
		return ErrAccessDenied
	}

	return nil
}

// checkManagerAccess проверяет, что пользователь является менеджером площадки
func (s *Service) checkManagerAccess(ctx context.Context, venueID int64, userID int64) error {
	venue, err := s.venues.Get(ctx, venueID)
	if err != nil {
		if errors.Is(err, venues.ErrVenueNotFound) {
			s.logger.Warn("checkManagerAccess: venue id=%d not found", venueID)
			return ErrVenueNotFound
		}
		s.logger.Error("checkManagerAccess: failed to get venue id=%d: %v", venueID, err)
		return fmt.Errorf("%w: checkManagerAccess - failed to get venue: %v", ErrInternal, err)
	}

	if !venue.IsManager(userID) {
		s.logger.Warn("checkManagerAccess: user=%d is not a manager of venue=%d", userID, venueID)
		return ErrAccessDenied
	}

	return nil
}
