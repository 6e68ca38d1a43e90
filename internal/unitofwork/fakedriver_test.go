package unitofwork_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeDriver hands out connections whose transactions fail on demand. It
// executes nothing.
type fakeDriver struct {
	beginErr    error
	commitErr   error
	rollbackErr error
	rollbackN   atomic.Int32
}

func (d *fakeDriver) rollbacks() int {
	return int(d.rollbackN.Load())
}

func (d *fakeDriver) Connect(context.Context) (driver.Conn, error) {
	return &fakeConn{driver: d}, nil
}

func (d *fakeDriver) Driver() driver.Driver {
	return d
}

func (d *fakeDriver) Open(string) (driver.Conn, error) {
	return &fakeConn{driver: d}, nil
}

func openFake(t *testing.T, d *fakeDriver) *sql.DB {
	t.Helper()
	database := sql.OpenDB(d)
	t.Cleanup(func() { assert.NoError(t, database.Close()) })
	return database
}

type fakeConn struct {
	driver *fakeDriver
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("fake driver does not prepare statements")
}

func (c *fakeConn) Close() error {
	return nil
}

func (c *fakeConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *fakeConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	if c.driver.beginErr != nil {
		return nil, c.driver.beginErr
	}
	return &fakeTx{driver: c.driver}, nil
}

type fakeTx struct {
	driver *fakeDriver
}

func (tx *fakeTx) Commit() error {
	return tx.driver.commitErr
}

func (tx *fakeTx) Rollback() error {
	tx.driver.rollbackN.Add(1)
	return tx.driver.rollbackErr
}
