package lending

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-lending/internal/model"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func physicalItem(id uint64, avail uint32) *model.CatalogItem {
	return &model.CatalogItem{
		ID:              id,
		Title:           "The Go Programming Language",
		Author:          "Donovan & Kernighan",
		Kind:            model.KindPhysical,
		Status:          model.StatusAvailable,
		TotalCopies:     3,
		AvailableCopies: avail,
	}
}

// newBorrowService wires the service over fakes and a sqlmock database
// so the transaction begin/commit/rollback pattern is asserted too.
func newBorrowService(t *testing.T, catalog *fakeCatalog, borrows *fakeBorrows) (*BorrowService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewBorrowService(db, catalog, borrows, NewAllocator(db, catalog), DefaultConfig())
	svc.now = func() time.Time { return testNow }
	return svc, mock
}

func TestBorrowHappyPath(t *testing.T) {
	catalog := &fakeCatalog{
		getByIDTx: func(_ context.Context, _ *sql.Tx, id uint64) (*model.CatalogItem, error) {
			return physicalItem(id, 2), nil
		},
		reserveCopyTx: func(_ context.Context, _ *sql.Tx, _ uint64) (bool, error) {
			return true, nil
		},
	}
	var created *model.BorrowRecord
	borrows := &fakeBorrows{
		countOpenTx:  func(_ context.Context, _ *sql.Tx, _ uint64) (int, error) { return 0, nil },
		existsOpenTx: func(_ context.Context, _ *sql.Tx, _, _ uint64) (bool, error) { return false, nil },
		createTx: func(_ context.Context, _ *sql.Tx, rec *model.BorrowRecord) error {
			rec.ID = 42
			created = rec
			return nil
		},
	}
	svc, mock := newBorrowService(t, catalog, borrows)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rec, err := svc.Borrow(context.Background(), 7, 1, 0)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, uint64(42), rec.ID)
	assert.Equal(t, model.BorrowActive, rec.State)
	assert.Equal(t, testNow, rec.BorrowedAt)
	// Zero duration falls back to the 14-day default.
	assert.Equal(t, testNow.Add(14*24*time.Hour), rec.DueAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowDurationBounds(t *testing.T) {
	svc, _ := newBorrowService(t, &fakeCatalog{}, &fakeBorrows{})

	for _, days := range []int{-1, 91, 120} {
		_, err := svc.Borrow(context.Background(), 7, 1, days)
		assert.ErrorIs(t, err, ErrInvalidDuration, "duration %d", days)
	}
}

func TestBorrowItemNotFound(t *testing.T) {
	catalog := &fakeCatalog{
		getByIDTx: func(_ context.Context, _ *sql.Tx, _ uint64) (*model.CatalogItem, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc, mock := newBorrowService(t, catalog, &fakeBorrows{})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Borrow(context.Background(), 7, 99, 7)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowRejectsNonPhysicalAndDisabled(t *testing.T) {
	item := physicalItem(1, 2)
	catalog := &fakeCatalog{
		getByIDTx: func(_ context.Context, _ *sql.Tx, _ uint64) (*model.CatalogItem, error) {
			return item, nil
		},
	}
	svc, mock := newBorrowService(t, catalog, &fakeBorrows{})

	item.Kind = model.KindDigitalFree
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Borrow(context.Background(), 7, 1, 7)
	assert.ErrorIs(t, err, ErrItemNotBorrowable)

	item.Kind = model.KindPhysical
	item.Status = model.StatusDisabled
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = svc.Borrow(context.Background(), 7, 1, 7)
	assert.ErrorIs(t, err, ErrItemNotBorrowable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowLimitOfFive(t *testing.T) {
	catalog := &fakeCatalog{
		getByIDTx: func(_ context.Context, _ *sql.Tx, id uint64) (*model.CatalogItem, error) {
			return physicalItem(id, 2), nil
		},
	}
	borrows := &fakeBorrows{
		countOpenTx: func(_ context.Context, _ *sql.Tx, _ uint64) (int, error) { return 5, nil },
	}
	svc, mock := newBorrowService(t, catalog, borrows)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Borrow(context.Background(), 7, 1, 7)
	assert.ErrorIs(t, err, ErrBorrowLimitExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowDuplicateOpenBorrow(t *testing.T) {
	catalog := &fakeCatalog{
		getByIDTx: func(_ context.Context, _ *sql.Tx, id uint64) (*model.CatalogItem, error) {
			return physicalItem(id, 2), nil
		},
	}
	borrows := &fakeBorrows{
		countOpenTx:  func(_ context.Context, _ *sql.Tx, _ uint64) (int, error) { return 1, nil },
		existsOpenTx: func(_ context.Context, _ *sql.Tx, _, _ uint64) (bool, error) { return true, nil },
	}
	svc, mock := newBorrowService(t, catalog, borrows)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Borrow(context.Background(), 7, 1, 7)
	assert.ErrorIs(t, err, ErrAlreadyBorrowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowLastCopyLost(t *testing.T) {
	// The guarded decrement misses: a concurrent borrower took the last
	// copy between the read and the reserve.  The allocator re-reads to
	// classify the failure and the whole transaction rolls back.
	item := physicalItem(1, 0)
	item.Status = model.StatusOutOfStock
	catalog := &fakeCatalog{
		getByIDTx: func(_ context.Context, _ *sql.Tx, _ uint64) (*model.CatalogItem, error) {
			return item, nil
		},
		reserveCopyTx: func(_ context.Context, _ *sql.Tx, _ uint64) (bool, error) {
			return false, nil
		},
	}
	borrows := &fakeBorrows{
		countOpenTx:  func(_ context.Context, _ *sql.Tx, _ uint64) (int, error) { return 0, nil },
		existsOpenTx: func(_ context.Context, _ *sql.Tx, _, _ uint64) (bool, error) { return false, nil },
	}
	svc, mock := newBorrowService(t, catalog, borrows)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Borrow(context.Background(), 7, 1, 7)
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReturnOnTime(t *testing.T) {
	rec := &model.BorrowRecord{
		ID: 42, UserID: 7, ItemID: 1,
		BorrowedAt: testNow.Add(-48 * time.Hour),
		DueAt:      testNow.Add(24 * time.Hour),
		State:      model.BorrowActive,
	}
	var markedState model.BorrowState
	released := false
	borrows := &fakeBorrows{
		getByIDTx: func(_ context.Context, _ *sql.Tx, _ uint64) (*model.BorrowRecord, error) {
			cp := *rec
			return &cp, nil
		},
		markReturnedTx: func(_ context.Context, _ *sql.Tx, _ uint64, _ time.Time, state model.BorrowState) error {
			markedState = state
			return nil
		},
	}
	catalog := &fakeCatalog{
		releaseCopyTx: func(_ context.Context, _ *sql.Tx, _ uint64) error {
			released = true
			return nil
		},
	}
	svc, mock := newBorrowService(t, catalog, borrows)
	mock.ExpectBegin()
	mock.ExpectCommit()

	out, err := svc.Return(context.Background(), 7, 42)
	require.NoError(t, err)
	assert.True(t, released)
	assert.Equal(t, model.BorrowReturned, markedState)
	assert.Equal(t, model.BorrowReturned, out.State)
	require.NotNil(t, out.ReturnedAt)
	assert.Equal(t, testNow, *out.ReturnedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReturnPastDueIsLate(t *testing.T) {
	rec := &model.BorrowRecord{
		ID: 42, UserID: 7, ItemID: 1,
		DueAt: testNow.Add(-time.Hour),
		State: model.BorrowOverdue,
	}
	var markedState model.BorrowState
	borrows := &fakeBorrows{
		getByIDTx: func(_ context.Context, _ *sql.Tx, _ uint64) (*model.BorrowRecord, error) {
			cp := *rec
			return &cp, nil
		},
		markReturnedTx: func(_ context.Context, _ *sql.Tx, _ uint64, _ time.Time, state model.BorrowState) error {
			markedState = state
			return nil
		},
	}
	catalog := &fakeCatalog{
		releaseCopyTx: func(_ context.Context, _ *sql.Tx, _ uint64) error { return nil },
	}
	svc, mock := newBorrowService(t, catalog, borrows)
	mock.ExpectBegin()
	mock.ExpectCommit()

	out, err := svc.Return(context.Background(), 7, 42)
	require.NoError(t, err)
	assert.Equal(t, model.BorrowReturnedLate, markedState)
	assert.Equal(t, model.BorrowReturnedLate, out.State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReturnWrongUser(t *testing.T) {
	borrows := &fakeBorrows{
		getByIDTx: func(_ context.Context, _ *sql.Tx, _ uint64) (*model.BorrowRecord, error) {
			return &model.BorrowRecord{ID: 42, UserID: 8, State: model.BorrowActive}, nil
		},
	}
	svc, mock := newBorrowService(t, &fakeCatalog{}, borrows)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Return(context.Background(), 7, 42)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReturnTwice(t *testing.T) {
	done := testNow.Add(-time.Hour)
	borrows := &fakeBorrows{
		getByIDTx: func(_ context.Context, _ *sql.Tx, _ uint64) (*model.BorrowRecord, error) {
			return &model.BorrowRecord{
				ID: 42, UserID: 7, ReturnedAt: &done, State: model.BorrowReturned,
			}, nil
		},
	}
	svc, mock := newBorrowService(t, &fakeCatalog{}, borrows)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Return(context.Background(), 7, 42)
	assert.ErrorIs(t, err, ErrAlreadyReturned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepOverdueCountsTransitions(t *testing.T) {
	borrows := &fakeBorrows{
		markOverdue: func(_ context.Context, _ time.Time) (int64, error) { return 3, nil },
	}
	svc, _ := newBorrowService(t, &fakeCatalog{}, borrows)

	n, err := svc.SweepOverdue(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
