package policy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	"github.com/m04kA/EVC-BookingService/pkg/dbmetrics"
	"github.com/m04kA/EVC-BookingService/pkg/psqlbuilder"
)

// policyColumns общий список колонок для SELECT-запросов
var policyColumns = []string{
	"id",
	"station_id",
	"port_id",
	"slot_duration_minutes",
	"advance_booking_days",
	"min_booking_notice_minutes",
	"pending_grace_minutes",
	"created_at",
	"updated_at",
}

// Repository репозиторий политик бронирования станций
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория политик
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetPolicyWithHierarchy получает политику с учетом иерархии приоритетов:
// политика конкретного порта перекрывает общестанционную.
func (r *Repository) GetPolicyWithHierarchy(ctx context.Context, stationID int64, portID *int64) (*domain.BookingPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(policyColumns...).
		From("booking_policies").
		Where(squirrel.Eq{"station_id": stationID})

	if portID != nil {
		selectBuilder = selectBuilder.
			Where(squirrel.Or{
				squirrel.Eq{"port_id": *portID},
				squirrel.Eq{"port_id": nil},
			}).
			OrderBy("port_id ASC NULLS LAST")
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"port_id": nil})
	}

	query, args, err := selectBuilder.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetPolicyWithHierarchy - build select query: %v", ErrBuildQuery, err)
	}

	p, err := r.scanPolicy(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetPolicyWithHierarchy - scan policy: %v", ErrScanRow, err)
	}

	return p, nil
}

// GetAllByStation получает все политики станции (общую и попортовые)
func (r *Repository) GetAllByStation(ctx context.Context, stationID int64) ([]*domain.BookingPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(policyColumns...).
		From("booking_policies").
		Where(squirrel.Eq{"station_id": stationID}).
		OrderBy("port_id ASC NULLS FIRST").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetAllByStation - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetAllByStation - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	policies := make([]*domain.BookingPolicy, 0)
	for rows.Next() {
		p, err := r.scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetAllByStation - scan row: %v", ErrScanRow, err)
		}
		policies = append(policies, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetAllByStation - rows error: %v", ErrScanRow, err)
	}

	return policies, nil
}

// Upsert создает или обновляет политику станции/порта.
// Уникальность пары (station_id, port_id) обеспечивается индексом
// с NULLS NOT DISTINCT.
func (r *Repository) Upsert(ctx context.Context, p *domain.BookingPolicy) (*domain.BookingPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_policies").
		Columns(
			"station_id",
			"port_id",
			"slot_duration_minutes",
			"advance_booking_days",
			"min_booking_notice_minutes",
			"pending_grace_minutes",
		).
		Values(
			p.StationID,
			p.PortID,
			p.SlotDurationMinutes,
			p.AdvanceBookingDays,
			p.MinBookingNoticeMinutes,
			p.PendingGraceMinutes,
		).
		Suffix(`ON CONFLICT (station_id, port_id) DO UPDATE SET
			slot_duration_minutes = EXCLUDED.slot_duration_minutes,
			advance_booking_days = EXCLUDED.advance_booking_days,
			min_booking_notice_minutes = EXCLUDED.min_booking_notice_minutes,
			pending_grace_minutes = EXCLUDED.pending_grace_minutes,
			updated_at = NOW()
			RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return p, nil
}

// Delete удаляет политику по ID
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("booking_policies").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrPolicyNotFound
	}

	return nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanPolicy сканирует одну политику
func (r *Repository) scanPolicy(row rowScanner) (*domain.BookingPolicy, error) {
	var p domain.BookingPolicy
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&p.ID,
		&p.StationID,
		&p.PortID,
		&p.SlotDurationMinutes,
		&p.AdvanceBookingDays,
		&p.MinBookingNoticeMinutes,
		&p.PendingGraceMinutes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}
