package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"backoffice/internal/domain"
	"backoffice/internal/repository"
)

func newMock(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(gormmysql.New(gormmysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)
	return New(gdb), mock
}

func TestOrders_GetByID_NotFound(t *testing.T) {
	d, mock := newMock(t)
	mock.ExpectQuery("SELECT \\* FROM `orders`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := d.Bundle().Orders.GetByID(context.Background(), "OID0")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrders_GetByID_DecodesJSONColumns(t *testing.T) {
	d, mock := newMock(t)
	date := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "order_date", "status", "mode", "items", "subtotal", "shipping_cost", "discount", "total_amount", "payment_method", "payment_status", "shipping_address"}).
		AddRow("OID1", date, "Confirmed", "Online",
			[]byte(`[{"product_id":"P1","product_name":"Phone","product_price":500,"quantity":2}]`),
			1000.0, 50.0, 100.0, 950.0, "COD", "Pending",
			[]byte(`{"recipient_name":"Rahim","phone":"017","address_line1":"Dhaka"}`))
	mock.ExpectQuery("SELECT \\* FROM `orders`").WillReturnRows(rows)

	o, err := d.Bundle().Orders.GetByID(context.Background(), "OID1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, o.Status)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "P1", o.Items[0].ProductID)
	assert.Equal(t, int64(2), o.Items[0].Quantity)
	assert.Equal(t, "Rahim", o.ShippingAddress.RecipientName)
	assert.Equal(t, 950.0, o.TotalAmount)
	assert.True(t, date.Equal(o.OrderDate))
}

func TestStock_Create_DuplicateSKU(t *testing.T) {
	d, mock := newMock(t)
	mock.ExpectExec("INSERT INTO `stock_units`").
		WillReturnError(&mysql.MySQLError{Number: mysqlDuplicateEntry, Message: "Duplicate entry 'SN-9' for key 'PRIMARY'"})

	err := d.Bundle().Stock.Create(context.Background(), &domain.SKU{SKUID: "SN-9", ProductID: "P1", Available: true})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStock_Create(t *testing.T) {
	d, mock := newMock(t)
	mock.ExpectExec("INSERT INTO `stock_units`").
		WillReturnResult(sqlmock.NewResult(1, 1))

	s := &domain.SKU{SKUID: "SN-1", ProductID: "P1", Available: true}
	require.NoError(t, d.Bundle().Stock.Create(context.Background(), s))
	assert.False(t, s.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_Commit(t *testing.T) {
	d, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `stock_units`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	b := d.Bundle()
	err := b.Tx.WithTransaction(context.Background(), func(ctx context.Context) error {
		return b.Stock.Create(ctx, &domain.SKU{SKUID: "SN-2", ProductID: "P1", Available: true})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_Rollback(t *testing.T) {
	d, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := d.Bundle().Tx.WithTransaction(context.Background(), func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStock_GetBySKU_LocksInsideTransaction(t *testing.T) {
	d, mock := newMock(t)
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	cols := []string{"sku_id", "product_id", "available", "linked_order_id", "comment", "created_at", "updated_at"}

	// outside a transaction the read is a plain select
	mock.ExpectQuery("SELECT \\* FROM `stock_units` WHERE sku_id = \\?[^F]*$").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("SN-1", "P1", true, "", "", created, created))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `stock_units` WHERE sku_id = \\?.* FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("SN-1", "P1", false, "OID1", "", created, created))
	mock.ExpectRollback()

	b := d.Bundle()
	s, err := b.Stock.GetBySKU(context.Background(), "SN-1")
	require.NoError(t, err)
	assert.True(t, s.Available)

	err = b.Tx.WithTransaction(context.Background(), func(ctx context.Context) error {
		u, err := b.Stock.GetBySKU(ctx, "SN-1")
		if err != nil {
			return err
		}
		return u.Consume("OID2")
	})
	assert.ErrorIs(t, err, domain.ErrSKUUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapErr(t *testing.T) {
	assert.Nil(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(gorm.ErrRecordNotFound), repository.ErrNotFound)
	assert.ErrorIs(t, mapErr(gorm.ErrDuplicatedKey), repository.ErrAlreadyExists)
	other := errors.New("other")
	assert.Equal(t, other, mapErr(other))
}
