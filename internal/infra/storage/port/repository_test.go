package port

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/EVC-BookingService/pkg/dbmetrics"
)

// capturedQuery запрос, дошедший до драйвера, вместе со связанными аргументами
type capturedQuery struct {
	query string
	args  []driver.Value
}

// fakeConn минимальный driver.Conn, записывающий запросы вместо выполнения
type fakeConn struct {
	queries []capturedQuery
}

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) { return nil, io.EOF }
func (c *fakeConn) Close() error                              { return nil }
func (c *fakeConn) Begin() (driver.Tx, error)                 { return nil, io.EOF }

func (c *fakeConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	values := make([]driver.Value, len(args))
	for i, a := range args {
		values[i] = a.Value
	}
	c.queries = append(c.queries, capturedQuery{query: query, args: values})
	return emptyRows{}, nil
}

func (c *fakeConn) last(t *testing.T) capturedQuery {
	t.Helper()
	require.NotEmpty(t, c.queries)
	return c.queries[len(c.queries)-1]
}

type emptyRows struct{}

func (emptyRows) Columns() []string              { return nil }
func (emptyRows) Close() error                   { return nil }
func (emptyRows) Next(dest []driver.Value) error { return io.EOF }

type fakeConnector struct{ conn *fakeConn }

func (c *fakeConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c *fakeConnector) Driver() driver.Driver                        { return nil }

func newFakeDB() (*sql.DB, *fakeConn) {
	conn := &fakeConn{}
	return sql.OpenDB(&fakeConnector{conn: conn}), conn
}

// fakeTx оборачивает *sql.DB в TxExecutor для проверки транзакционных веток
type fakeTx struct{ *sql.DB }

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }

// Горячий путь бронирования читает порт через GetByStationAndID внутри
// serializable-транзакции - строка должна блокироваться, как в GetByID.
func TestGetByStationAndID_LocksRowInTransaction(t *testing.T) {
	db, conn := newFakeDB()
	repo := NewRepository(db)

	_, err := repo.GetByStationAndID(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrPortNotFound)
	assert.NotContains(t, conn.last(t).query, "FOR UPDATE")

	txCtx := dbmetrics.ContextWithTx(context.Background(), fakeTx{db})
	_, err = repo.GetByStationAndID(txCtx, 1, 10)
	assert.ErrorIs(t, err, ErrPortNotFound)

	q := conn.last(t)
	assert.Contains(t, q.query, "FOR UPDATE")
	assert.Equal(t, []driver.Value{int64(10), int64(1)}, q.args)
}

func TestGetByID_LocksRowInTransaction(t *testing.T) {
	db, conn := newFakeDB()
	repo := NewRepository(db)

	_, err := repo.GetByID(context.Background(), 10)
	assert.ErrorIs(t, err, ErrPortNotFound)
	assert.NotContains(t, conn.last(t).query, "FOR UPDATE")

	txCtx := dbmetrics.ContextWithTx(context.Background(), fakeTx{db})
	_, err = repo.GetByID(txCtx, 10)
	assert.ErrorIs(t, err, ErrPortNotFound)
	assert.Contains(t, conn.last(t).query, "FOR UPDATE")
}
