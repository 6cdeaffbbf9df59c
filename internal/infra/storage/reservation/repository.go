package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBooking/pkg/psqlbuilder"
)

const table = "reservations"

// onConflictActive условие вставки: партиальный уникальный индекс по активным броням
const onConflictActive = "ON CONFLICT (venue_id, slot_date, court, hour) WHERE status = 'committed' DO NOTHING RETURNING id, created_at"

var columns = []string{
	"id",
	"transaction_id",
	"venue_id",
	"user_id",
	"slot_date",
	"court",
	"hour",
	"total_price",
	"status",
	"cancelled_at",
	"created_at",
}

// Repository репозиторий броней слотов
type Repository struct {
	db        DBExecutor
	txManager TransactionManager
}

// NewRepository создает новый экземпляр репозитория броней
func NewRepository(db DBExecutor, txManager TransactionManager) *Repository {
	return &Repository{db: db, txManager: txManager}
}

// ConditionalCommit атомарно бронирует все слоты команды или ни одного
//
// Одна транзакция READ COMMITTED, по одному INSERT ... ON CONFLICT DO NOTHING на слот
// в порядке (корт, час). Вставка, не вернувшая строку, означает, что слот уже занят
// зафиксированной бронью: транзакция откатывается, а ошибка перечисляет ровно проигравшие слоты.
//
// Повтор уже зафиксированного TransactionID возвращает сохранённые брони с Replayed = true.
func (r *Repository) ConditionalCommit(ctx context.Context, cmd domain.CommitCommand) (*domain.CommitResult, error) {
	slots := append([]domain.Slot(nil), cmd.Slots...)
	domain.SortSlots(slots)
	date := domain.DateOnly(cmd.Date)

	var result *domain.CommitResult

	err := r.txManager.Do(ctx, func(txCtx context.Context) error {
		existing, err := r.getByTransaction(txCtx, cmd.TransactionID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			result = &domain.CommitResult{Reservations: existing, Replayed: true}
			return nil
		}

		executor := dbmetrics.GetExecutor(txCtx, r.db)
		created := make([]*domain.Reservation, 0, len(slots))
		losers := make([]domain.Slot, 0)

		for _, slot := range slots {
			query, args, err := psqlbuilder.Insert(table).
				Columns("transaction_id", "venue_id", "user_id", "slot_date", "court", "hour", "total_price", "status").
				Values(cmd.TransactionID, cmd.VenueID, cmd.UserID, date, slot.Court, slot.Hour, cmd.TotalPrice, domain.StatusCommitted).
				Suffix(onConflictActive).
				ToSql()
			if err != nil {
				return fmt.Errorf("%w: ConditionalCommit - build insert query: %v", ErrBuildQuery, err)
			}

			res := &domain.Reservation{
				TransactionID: cmd.TransactionID,
				VenueID:       cmd.VenueID,
				UserID:        cmd.UserID,
				Date:          date,
				Court:         slot.Court,
				Hour:          slot.Hour,
				TotalPrice:    cmd.TotalPrice,
				Status:        domain.StatusCommitted,
			}

			err = executor.QueryRowContext(txCtx, query, args...).Scan(&res.ID, &res.CreatedAt)
			if errors.Is(err, sql.ErrNoRows) {
				losers = append(losers, slot)
				continue
			}
			if err != nil {
				return execError(fmt.Sprintf("ConditionalCommit - insert %s", slot), err)
			}
			created = append(created, res)
		}

		if len(losers) > 0 {
			return &domain.SlotConflictError{Slots: losers}
		}

		result = &domain.CommitResult{Reservations: created}
		return nil
	})

	if err == nil {
		return result, nil
	}

	// Конкурентный запрос с тем же TransactionID мог зафиксироваться раньше:
	// ON CONFLICT дожидается его коммита, поэтому строки уже видны
	var conflict *domain.SlotConflictError
	if errors.As(err, &conflict) {
		existing, lookupErr := r.getByTransaction(ctx, cmd.TransactionID)
		if lookupErr == nil && len(existing) > 0 {
			return &domain.CommitResult{Reservations: existing, Replayed: true}, nil
		}
	}

	return nil, err
}

// QueryReservations возвращает активные брони площадки на дату
func (r *Repository) QueryReservations(ctx context.Context, venueID int64, date time.Time) ([]*domain.Reservation, error) {
	return r.GetByVenueWithFilter(ctx, domain.VenueReservationsFilter{VenueID: venueID, Date: date})
}

// GetByVenueWithFilter получает брони площадки за дату
// По умолчанию только активные, сортировка по корту и часу
func (r *Repository) GetByVenueWithFilter(ctx context.Context, filter domain.VenueReservationsFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"venue_id": filter.VenueID}).
		Where(squirrel.Eq{"slot_date": domain.DateOnly(filter.Date)})

	if filter.Court != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"court": *filter.Court})
	}

	if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": activeStatusStrings()})
	}

	query, args, err := selectBuilder.OrderBy("court ASC", "hour ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByVenueWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, execError("GetByVenueWithFilter - execute query", err)
	}
	defer rows.Close()

	return r.scanReservations(rows)
}

// GetByTransaction получает все брони транзакции
func (r *Repository) GetByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*domain.Reservation, error) {
	reservations, err := r.getByTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if len(reservations) == 0 {
		return nil, ErrReservationNotFound
	}
	return reservations, nil
}

// GetByUser получает брони пользователя, новые даты первыми
func (r *Repository) GetByUser(ctx context.Context, userID int64, includeInactive bool) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_id": userID})

	if !includeInactive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": activeStatusStrings()})
	}

	query, args, err := selectBuilder.OrderBy("slot_date DESC", "court ASC", "hour ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUser - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, execError("GetByUser - execute query", err)
	}
	defer rows.Close()

	return r.scanReservations(rows)
}

// CancelTransaction отменяет все активные брони транзакции и возвращает их
func (r *Repository) CancelTransaction(ctx context.Context, transactionID uuid.UUID) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.StatusCancelled).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"transaction_id": transactionID}).
		Where(squirrel.Eq{"status": domain.StatusCommitted}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CancelTransaction - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, execError("CancelTransaction - execute update", err)
	}
	defer rows.Close()

	cancelled, err := r.scanReservations(rows)
	if err != nil {
		return nil, err
	}
	if len(cancelled) == 0 {
		return nil, ErrNothingToCancel
	}

	domain.SortReservations(cancelled)
	return cancelled, nil
}

func (r *Repository) getByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"transaction_id": transactionID}).
		OrderBy("court ASC", "hour ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByTransaction - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, execError("GetByTransaction - execute query", err)
	}
	defer rows.Close()

	return r.scanReservations(rows)
}

// scanReservations сканирует результаты запроса в слайс броней
func (r *Repository) scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		var res domain.Reservation
		var cancelledAt sql.NullTime

		err := rows.Scan(
			&res.ID,
			&res.TransactionID,
			&res.VenueID,
			&res.UserID,
			&res.Date,
			&res.Court,
			&res.Hour,
			&res.TotalPrice,
			&res.Status,
			&cancelledAt,
			&res.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %v", ErrScanRow, err)
		}

		if cancelledAt.Valid {
			t := cancelledAt.Time
			res.CancelledAt = &t
		}
		res.Date = domain.DateOnly(res.Date)

		reservations = append(reservations, &res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows error: %v", ErrScanRow, err)
	}

	return reservations, nil
}

func activeStatusStrings() []string {
	statuses := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

