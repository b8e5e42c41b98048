package port

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	"github.com/m04kA/EVC-BookingService/pkg/dbmetrics"
	"github.com/m04kA/EVC-BookingService/pkg/psqlbuilder"
	"github.com/m04kA/EVC-BookingService/pkg/types"
)

// portColumns общий список колонок для SELECT-запросов
var portColumns = []string{
	"id",
	"station_id",
	"connector_type",
	"power_kw",
	"status",
	"live_sessions",
	"open_time_override",
	"close_time_override",
	"created_at",
	"updated_at",
}

// Repository реестр физических зарядных портов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр реестра портов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create регистрирует новый порт станции (онбординг оператора)
func (r *Repository) Create(ctx context.Context, p *domain.Port) (*domain.Port, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("ports").
		Columns(
			"station_id",
			"connector_type",
			"power_kw",
			"status",
			"live_sessions",
			"open_time_override",
			"close_time_override",
		).
		Values(
			p.StationID,
			p.Connector,
			p.PowerKW,
			p.Status,
			p.LiveSessions,
			p.OpenTimeOverride,
			p.CloseTimeOverride,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return p, nil
}

// GetByID получает порт по ID.
// Внутри транзакции строка блокируется (FOR UPDATE), чтобы статус порта
// не поменялся между проверкой и вставкой брони.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Port, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(portColumns...).
		From("ports").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	p, err := r.scanPort(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrPortNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan port: %v", ErrScanRow, err)
	}

	return p, nil
}

// GetByStationAndID получает порт, проверяя его принадлежность станции.
// Внутри транзакции строка блокируется (FOR UPDATE), как и в GetByID:
// горячий путь бронирования читает порт именно через этот метод.
func (r *Repository) GetByStationAndID(ctx context.Context, stationID, portID int64) (*domain.Port, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(portColumns...).
		From("ports").
		Where(squirrel.Eq{"id": portID}).
		Where(squirrel.Eq{"station_id": stationID})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByStationAndID - build select query: %v", ErrBuildQuery, err)
	}

	p, err := r.scanPort(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrPortNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByStationAndID - scan port: %v", ErrScanRow, err)
	}

	return p, nil
}

// ListByStation получает все порты станции
func (r *Repository) ListByStation(ctx context.Context, stationID int64) ([]*domain.Port, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(portColumns...).
		From("ports").
		Where(squirrel.Eq{"station_id": stationID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByStation - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByStation - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ports := make([]*domain.Port, 0)
	for rows.Next() {
		p, err := r.scanPort(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByStation - scan row: %v", ErrScanRow, err)
		}
		ports = append(ports, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByStation - rows error: %v", ErrScanRow, err)
	}

	return ports, nil
}

// SetStatus меняет статус порта с учетом живых сессий.
// Переход в busy допустим только при live_sessions > 0: статусом управляет
// Session-подсистема, произвольные внешние записи отклоняются.
// Условие проверяется в самом UPDATE, поэтому смена статуса атомарна.
func (r *Repository) SetStatus(ctx context.Context, id int64, status domain.PortStatus, sessionDelta int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("ports").
		Set("status", status).
		Set("live_sessions", squirrel.Expr("GREATEST(live_sessions + ?, 0)", sessionDelta)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	// busy требует хотя бы одной живой сессии после применения дельты
	if status == domain.PortBusy {
		updateBuilder = updateBuilder.Where(squirrel.Expr("live_sessions + ? > 0", sessionDelta))
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		// Либо порт не существует, либо переход в busy без живых сессий
		if status == domain.PortBusy {
			if _, getErr := r.GetByID(ctx, id); getErr == nil {
				return ErrInvalidTransition
			}
		}
		return ErrPortNotFound
	}

	return nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanPort сканирует один порт
func (r *Repository) scanPort(row rowScanner) (*domain.Port, error) {
	var p domain.Port
	var openOverride, closeOverride sql.NullString
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&p.ID,
		&p.StationID,
		&p.Connector,
		&p.PowerKW,
		&p.Status,
		&p.LiveSessions,
		&openOverride,
		&closeOverride,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if openOverride.Valid {
		ts, err := types.NewTimeStringFromString(trimSeconds(openOverride.String))
		if err != nil {
			return nil, err
		}
		p.OpenTimeOverride = &ts
	}
	if closeOverride.Valid {
		ts, err := types.NewTimeStringFromString(trimSeconds(closeOverride.String))
		if err != nil {
			return nil, err
		}
		p.CloseTimeOverride = &ts
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}

// trimSeconds отбрасывает секунды из значения колонки TIME ("10:00:00" -> "10:00")
func trimSeconds(s string) string {
	if len(s) > 5 {
		return s[:5]
	}
	return s
}
