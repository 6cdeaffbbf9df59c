package venue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBooking/pkg/psqlbuilder"
)

// Repository репозиторий площадок (только чтение)
type Repository struct {
	db        DBExecutor
	txManager TransactionManager
}

// NewRepository создает новый экземпляр репозитория площадок
func NewRepository(db DBExecutor, txManager TransactionManager) *Repository {
	return &Repository{db: db, txManager: txManager}
}

// GetByID получает площадку вместе с тарифами и менеджерами
// Все три чтения выполняются в одной транзакции только для чтения (согласованный снимок)
// Тарифы возвращаются как есть, валидация - на стороне справочника площадок
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Venue, error) {
	var venue *domain.Venue

	err := r.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		v, err := r.getVenue(txCtx, id)
		if err != nil {
			return err
		}

		tiers, err := r.getTiers(txCtx, id)
		if err != nil {
			return err
		}

		managers, err := r.getManagerIDs(txCtx, id)
		if err != nil {
			return err
		}

		v.Tiers = tiers
		v.ManagerIDs = managers
		venue = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	return venue, nil
}

func (r *Repository) getVenue(ctx context.Context, id int64) (*domain.Venue, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"address",
		"court_count",
		"open_hour",
		"close_hour",
		"created_at",
		"updated_at",
	).
		From("venues").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var v domain.Venue
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&v.ID,
		&v.Name,
		&v.Address,
		&v.CourtCount,
		&v.OpenHour,
		&v.CloseHour,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan venue: %v", ErrScanRow, err)
	}

	v.CreatedAt = createdAt.Time
	v.UpdatedAt = updatedAt.Time

	return &v, nil
}

func (r *Repository) getTiers(ctx context.Context, venueID int64) ([]domain.PriceTier, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("start_hour", "end_hour", "unit_price").
		From("venue_price_tiers").
		Where(squirrel.Eq{"venue_id": venueID}).
		OrderBy("start_hour ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getTiers - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getTiers - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	tiers := make([]domain.PriceTier, 0)
	for rows.Next() {
		var t domain.PriceTier
		if err := rows.Scan(&t.StartHour, &t.EndHour, &t.UnitPrice); err != nil {
			return nil, fmt.Errorf("%w: getTiers - scan tier: %v", ErrScanRow, err)
		}
		tiers = append(tiers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getTiers - rows error: %v", ErrScanRow, err)
	}

	return tiers, nil
}

func (r *Repository) getManagerIDs(ctx context.Context, venueID int64) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("user_id").
		From("venue_managers").
		Where(squirrel.Eq{"venue_id": venueID}).
		OrderBy("user_id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getManagerIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getManagerIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: getManagerIDs - scan user_id: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getManagerIDs - rows error: %v", ErrScanRow, err)
	}

	return ids, nil
}
