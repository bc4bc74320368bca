package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-lending/internal/model"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func beginTx(t *testing.T, db *sql.DB, mock sqlmock.Sqlmock) *sql.Tx {
	t.Helper()
	mock.ExpectBegin()
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	return tx
}

func itemRows(it *model.CatalogItem) *sqlmock.Rows {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var isbn any
	if it.ISBN != nil {
		isbn = *it.ISBN
	}
	return sqlmock.NewRows([]string{
		"id", "title", "author", "isbn", "kind", "status",
		"total_copies", "available_copies", "unit_price_cents", "period_days",
		"created_at", "updated_at",
	}).AddRow(it.ID, it.Title, it.Author, isbn, it.Kind, it.Status,
		it.TotalCopies, it.AvailableCopies, it.UnitPriceCents, it.PeriodDays, now, now)
}

func TestReserveCopyTxGuard(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepo(db)
	tx := beginTx(t, db, mock)

	guard := regexp.QuoteMeta(`available_copies > 0`)

	// One copy left: the guard matches and the row flips OUT_OF_STOCK.
	mock.ExpectExec(guard).WithArgs(uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.ReserveCopyTx(context.Background(), tx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	// Empty shelf: zero rows matched, no error.
	mock.ExpectExec(guard).WithArgs(uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.ReserveCopyTx(context.Background(), tx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseCopyTxStatusFlipRequiresStock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepo(db)
	tx := beginTx(t, db, mock)

	// The flip back to AVAILABLE must be conditional on total_copies:
	// an item resized to zero while a copy was out gets the capped
	// increment (available stays 0) and has to remain OUT_OF_STOCK.
	guard := regexp.QuoteMeta(`IF(status = 'OUT_OF_STOCK' AND total_copies > 0, 'AVAILABLE', status)`)

	mock.ExpectExec(guard).WithArgs(uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ReleaseCopyTx(context.Background(), tx, 1)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseCopyTxUnknownItem(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectExec(regexp.QuoteMeta(`LEAST(available_copies + 1, total_copies)`)).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ReleaseCopyTx(context.Background(), tx, 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResizeTxPreservesBorrowedCopies(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepo(db)
	tx := beginTx(t, db, mock)

	// 5 total, 2 available: 3 copies are out with borrowers.
	it := &model.CatalogItem{
		ID: 1, Title: "t", Author: "a",
		Kind: model.KindPhysical, Status: model.StatusAvailable,
		TotalCopies: 5, AvailableCopies: 2,
	}
	mock.ExpectQuery("FOR UPDATE").WithArgs(uint64(1)).WillReturnRows(itemRows(it))
	// Shrinking to 4 keeps the 3 borrowed out: 1 stays available.
	mock.ExpectExec(regexp.QuoteMeta(`SET total_copies = ?, available_copies = ?, status = ?`)).
		WithArgs(uint32(4), uint32(1), model.StatusAvailable, uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	out, err := repo.ResizeTx(context.Background(), tx, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), out.TotalCopies)
	assert.Equal(t, uint32(1), out.AvailableCopies)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResizeTxBelowBorrowedGoesOutOfStock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepo(db)
	tx := beginTx(t, db, mock)

	it := &model.CatalogItem{
		ID: 1, Title: "t", Author: "a",
		Kind: model.KindPhysical, Status: model.StatusAvailable,
		TotalCopies: 5, AvailableCopies: 2,
	}
	mock.ExpectQuery("FOR UPDATE").WithArgs(uint64(1)).WillReturnRows(itemRows(it))
	// New total (2) is below the 3 borrowed copies: nothing available.
	mock.ExpectExec(regexp.QuoteMeta(`SET total_copies = ?, available_copies = ?, status = ?`)).
		WithArgs(uint32(2), uint32(0), model.StatusOutOfStock, uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	out, err := repo.ResizeTx(context.Background(), tx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), out.AvailableCopies)
	assert.Equal(t, model.StatusOutOfStock, out.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResizeTxRejectsDigital(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepo(db)
	tx := beginTx(t, db, mock)

	it := &model.CatalogItem{
		ID: 2, Title: "t", Author: "a",
		Kind: model.KindDigitalLicensed, Status: model.StatusAvailable,
		UnitPriceCents: 499, PeriodDays: 30,
	}
	mock.ExpectQuery("FOR UPDATE").WithArgs(uint64(2)).WillReturnRows(itemRows(it))

	_, err := repo.ResizeTx(context.Background(), tx, 2, 10)
	assert.ErrorIs(t, err, ErrNotPhysical)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateISBN(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepo(db)

	isbn := "978-0134190440"
	it := &model.CatalogItem{
		Title: "The Go Programming Language", Author: "Donovan & Kernighan",
		ISBN: &isbn, Kind: model.KindPhysical, Status: model.StatusAvailable,
		TotalCopies: 3, AvailableCopies: 3,
	}
	mock.ExpectExec("INSERT INTO catalog_items").
		WillReturnError(errDuplicateKey{})

	err := repo.Create(context.Background(), it)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// errDuplicateKey mimics the driver's text for MySQL error 1062.
type errDuplicateKey struct{}

func (errDuplicateKey) Error() string {
	return "Error 1062 (23000): Duplicate entry '978-0134190440' for key 'catalog_items.isbn'"
}
