package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-lending/internal/model"
)

func TestSetStateWithGuard(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRentalRepo(db)

	guarded := regexp.QuoteMeta(`UPDATE rental_orders SET state = ? WHERE id = ? AND state IN (?)`)

	mock.ExpectExec(guarded).
		WithArgs(model.RentalCancelled, uint64(9), model.RentalPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetState(context.Background(), 9, model.RentalCancelled, model.RentalPending))

	// Guard misses when the order left PENDING in the meantime.
	mock.ExpectExec(guarded).
		WithArgs(model.RentalCancelled, uint64(9), model.RentalPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.SetState(context.Background(), 9, model.RentalCancelled, model.RentalPending)
	assert.ErrorIs(t, err, ErrConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStateUnconditional(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRentalRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE rental_orders SET state = ? WHERE id = ?`)).
		WithArgs(model.RentalReturned, uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetState(context.Background(), 9, model.RentalReturned))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkExpiredOnlyTouchesActiveRents(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRentalRepo(db)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`order_type = 'RENT' AND state = 'ACTIVE' AND expires_at < ?`)).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.MarkExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasHeldExcludesCancelled(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRentalRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`state IN ('ACTIVE','EXPIRED','RETURNED')`)).
		WithArgs(uint64(7), uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))

	ok, err := repo.HasHeld(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePopulatesID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRentalRepo(db)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	o := &model.RentalOrder{
		UserID: 7, ItemID: 1, OrderType: model.OrderRent, Periods: 2,
		StartedAt: now, ExpiresAt: now.Add(60 * 24 * time.Hour),
		TotalPriceCents: 998, State: model.RentalActive,
	}
	mock.ExpectExec("INSERT INTO rental_orders").
		WithArgs(o.UserID, o.ItemID, o.OrderType, o.Periods, o.StartedAt, o.ExpiresAt, o.TotalPriceCents, o.State).
		WillReturnResult(sqlmock.NewResult(9, 1))

	require.NoError(t, repo.Create(context.Background(), o))
	assert.Equal(t, uint64(9), o.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
