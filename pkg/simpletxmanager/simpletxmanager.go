package simpletxmanager

import (
	"context"
	"database/sql"

	"github.com/m04kA/EVC-BookingService/pkg/dbmetrics"
	"github.com/m04kA/EVC-BookingService/pkg/txmanager"
)

// TransactionManager менеджер транзакций поверх чистого *sql.DB,
// без обертки метрик. Используется, когда метрики выключены в конфигурации.
type TransactionManager struct {
	inner *txmanager.TransactionManager
}

// beginner адаптирует *sql.DB к интерфейсу txmanager.TxBeginner
type beginner struct {
	db *sql.DB
}

// BeginTx начинает транзакцию; *sql.Tx сам удовлетворяет TxExecutor
func (b *beginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	return b.db.BeginTx(ctx, opts)
}

// NewTransactionManager создает менеджер транзакций без метрик
func NewTransactionManager(db *sql.DB) *TransactionManager {
	return &TransactionManager{inner: txmanager.NewTransactionManager(&beginner{db: db})}
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.inner.Do(ctx, fn)
}

// DoSerializable выполняет fn в сериализуемой транзакции с повтором при конфликте
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.inner.DoSerializable(ctx, fn)
}

// DoReadOnly выполняет fn в read-only транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.inner.DoReadOnly(ctx, fn)
}
