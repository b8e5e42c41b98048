package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/EVC-BookingService/pkg/dbmetrics"
)

// количество повторов сериализуемой транзакции при конфликте/таймауте
const serializableRetries = 1

// пауза перед повтором
const retryBackoff = 50 * time.Millisecond

// ErrTxTimeout возвращается, когда транзакция не уложилась в дедлайн даже после повтора
var ErrTxTimeout = errors.New("txmanager: transaction timed out")

// TxBeginner интерфейс для начала транзакций.
// Поддерживает *dbmetrics.DB и любой другой источник TxExecutor.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager менеджер транзакций поверх обернутой в метрики БД.
// Кладет активную транзакцию в контекст, репозитории достают её через dbmetrics.GetExecutor.
type TransactionManager struct {
	db TxBeginner
}

// NewTransactionManager создает новый менеджер транзакций
func NewTransactionManager(db TxBeginner) *TransactionManager {
	return &TransactionManager{db: db}
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{}, fn)
}

// DoSerializable выполняет fn в сериализуемой транзакции.
// Конфликт сериализации или таймаут повторяется один раз с паузой:
// при конкурентных бронированиях это ожидаемая ситуация, а не сбой.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	var err error
	for attempt := 0; ; attempt++ {
		err = m.run(ctx, opts, fn)
		if err == nil || attempt >= serializableRetries || !isRetryable(err) {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrTxTimeout, ctx.Err())
		case <-time.After(retryBackoff):
		}
	}

	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTxTimeout, err)
	}
	return err
}

// DoReadOnly выполняет fn в read-only транзакции (консистентный снимок для чтения)
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

// run начинает транзакцию, выполняет fn и коммитит/откатывает
func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("txmanager: failed to begin transaction: %w", err)
	}

	txCtx := dbmetrics.ContextWithTx(ctx, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("txmanager: rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("txmanager: commit failed: %w", err)
	}

	return nil
}

// isRetryable определяет, имеет ли смысл повторять транзакцию.
// 40001 serialization_failure, 40P01 deadlock_detected - штатные конфликты
// сериализуемых транзакций; дедлайн повторяем в расчете на кратковременную
// конкуренцию за блокировки.
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return errors.Is(err, context.DeadlineExceeded)
}
