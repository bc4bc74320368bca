package lending

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/library-lending/internal/model"
)

// Function-field fakes for the store interfaces.  Each test sets only
// the methods its flow touches; an unset method panics, which makes an
// unexpected store call a loud failure.

type fakeCatalog struct {
	getByID       func(ctx context.Context, id uint64) (*model.CatalogItem, error)
	getByIDTx     func(ctx context.Context, tx *sql.Tx, id uint64) (*model.CatalogItem, error)
	reserveCopyTx func(ctx context.Context, tx *sql.Tx, itemID uint64) (bool, error)
	releaseCopyTx func(ctx context.Context, tx *sql.Tx, itemID uint64) error
	resizeTx      func(ctx context.Context, tx *sql.Tx, itemID uint64, newTotal uint32) (*model.CatalogItem, error)
}

func (f *fakeCatalog) GetByID(ctx context.Context, id uint64) (*model.CatalogItem, error) {
	return f.getByID(ctx, id)
}
func (f *fakeCatalog) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.CatalogItem, error) {
	return f.getByIDTx(ctx, tx, id)
}
func (f *fakeCatalog) ReserveCopyTx(ctx context.Context, tx *sql.Tx, itemID uint64) (bool, error) {
	return f.reserveCopyTx(ctx, tx, itemID)
}
func (f *fakeCatalog) ReleaseCopyTx(ctx context.Context, tx *sql.Tx, itemID uint64) error {
	return f.releaseCopyTx(ctx, tx, itemID)
}
func (f *fakeCatalog) ResizeTx(ctx context.Context, tx *sql.Tx, itemID uint64, newTotal uint32) (*model.CatalogItem, error) {
	return f.resizeTx(ctx, tx, itemID, newTotal)
}

type fakeBorrows struct {
	createTx       func(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error
	getByIDTx      func(ctx context.Context, tx *sql.Tx, id uint64) (*model.BorrowRecord, error)
	countOpenTx    func(ctx context.Context, tx *sql.Tx, userID uint64) (int, error)
	existsOpenTx   func(ctx context.Context, tx *sql.Tx, userID, itemID uint64) (bool, error)
	markReturnedTx func(ctx context.Context, tx *sql.Tx, id uint64, at time.Time, state model.BorrowState) error
	markOverdue    func(ctx context.Context, now time.Time) (int64, error)
	listByUser     func(ctx context.Context, userID uint64) ([]model.BorrowRecord, error)
	listOpenByUser func(ctx context.Context, userID uint64) ([]model.BorrowRecord, error)
	listOverdue    func(ctx context.Context) ([]model.BorrowRecord, error)
	hasAny         func(ctx context.Context, userID, itemID uint64) (bool, error)
}

func (f *fakeBorrows) CreateTx(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error {
	return f.createTx(ctx, tx, rec)
}
func (f *fakeBorrows) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.BorrowRecord, error) {
	return f.getByIDTx(ctx, tx, id)
}
func (f *fakeBorrows) CountOpenTx(ctx context.Context, tx *sql.Tx, userID uint64) (int, error) {
	return f.countOpenTx(ctx, tx, userID)
}
func (f *fakeBorrows) ExistsOpenTx(ctx context.Context, tx *sql.Tx, userID, itemID uint64) (bool, error) {
	return f.existsOpenTx(ctx, tx, userID, itemID)
}
func (f *fakeBorrows) MarkReturnedTx(ctx context.Context, tx *sql.Tx, id uint64, at time.Time, state model.BorrowState) error {
	return f.markReturnedTx(ctx, tx, id, at, state)
}
func (f *fakeBorrows) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	return f.markOverdue(ctx, now)
}
func (f *fakeBorrows) ListByUser(ctx context.Context, userID uint64) ([]model.BorrowRecord, error) {
	return f.listByUser(ctx, userID)
}
func (f *fakeBorrows) ListOpenByUser(ctx context.Context, userID uint64) ([]model.BorrowRecord, error) {
	return f.listOpenByUser(ctx, userID)
}
func (f *fakeBorrows) ListOverdue(ctx context.Context) ([]model.BorrowRecord, error) {
	return f.listOverdue(ctx)
}
func (f *fakeBorrows) HasAny(ctx context.Context, userID, itemID uint64) (bool, error) {
	return f.hasAny(ctx, userID, itemID)
}

type fakeRentals struct {
	create           func(ctx context.Context, o *model.RentalOrder) error
	getByID          func(ctx context.Context, id uint64) (*model.RentalOrder, error)
	setState         func(ctx context.Context, id uint64, to model.RentalState, fromStates ...model.RentalState) error
	markExpired      func(ctx context.Context, now time.Time) (int64, error)
	existsActiveAt   func(ctx context.Context, userID, itemID uint64, now time.Time) (bool, error)
	hasHeld          func(ctx context.Context, userID, itemID uint64) (bool, error)
	listByUser       func(ctx context.Context, userID uint64) ([]model.RentalOrder, error)
	listActiveByUser func(ctx context.Context, userID uint64, now time.Time) ([]model.RentalOrder, error)
	listByState      func(ctx context.Context, state model.RentalState) ([]model.RentalOrder, error)
}

func (f *fakeRentals) Create(ctx context.Context, o *model.RentalOrder) error {
	return f.create(ctx, o)
}
func (f *fakeRentals) GetByID(ctx context.Context, id uint64) (*model.RentalOrder, error) {
	return f.getByID(ctx, id)
}
func (f *fakeRentals) SetState(ctx context.Context, id uint64, to model.RentalState, fromStates ...model.RentalState) error {
	return f.setState(ctx, id, to, fromStates...)
}
func (f *fakeRentals) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	return f.markExpired(ctx, now)
}
func (f *fakeRentals) ExistsActiveAt(ctx context.Context, userID, itemID uint64, now time.Time) (bool, error) {
	return f.existsActiveAt(ctx, userID, itemID, now)
}
func (f *fakeRentals) HasHeld(ctx context.Context, userID, itemID uint64) (bool, error) {
	return f.hasHeld(ctx, userID, itemID)
}
func (f *fakeRentals) ListByUser(ctx context.Context, userID uint64) ([]model.RentalOrder, error) {
	return f.listByUser(ctx, userID)
}
func (f *fakeRentals) ListActiveByUser(ctx context.Context, userID uint64, now time.Time) ([]model.RentalOrder, error) {
	return f.listActiveByUser(ctx, userID, now)
}
func (f *fakeRentals) ListByState(ctx context.Context, state model.RentalState) ([]model.RentalOrder, error) {
	return f.listByState(ctx, state)
}
