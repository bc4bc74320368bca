package lending

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/library-lending/internal/model"
)

// The engine talks to persistence through these narrow interfaces so
// that the lifecycle logic can be exercised against hand-rolled mocks.
// internal/repository provides the MySQL implementations.

// CatalogStore is the engine's view of the catalog_items table.  The
// copy-counter methods are the only write path to available_copies and
// the derived OUT_OF_STOCK status anywhere in the system.
type CatalogStore interface {
    GetByID(ctx context.Context, id uint64) (*model.CatalogItem, error)
    GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.CatalogItem, error)

    // ReserveCopyTx returns false (with nil error) when the guarded
    // decrement matched no row: item missing, not physical, or no
    // copies left.
    ReserveCopyTx(ctx context.Context, tx *sql.Tx, itemID uint64) (bool, error)
    ReleaseCopyTx(ctx context.Context, tx *sql.Tx, itemID uint64) error
    ResizeTx(ctx context.Context, tx *sql.Tx, itemID uint64, newTotal uint32) (*model.CatalogItem, error)
}

// BorrowStore is the engine's view of the borrow_records table.
type BorrowStore interface {
    CreateTx(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error
    GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.BorrowRecord, error)
    CountOpenTx(ctx context.Context, tx *sql.Tx, userID uint64) (int, error)
    ExistsOpenTx(ctx context.Context, tx *sql.Tx, userID, itemID uint64) (bool, error)
    MarkReturnedTx(ctx context.Context, tx *sql.Tx, id uint64, at time.Time, state model.BorrowState) error
    MarkOverdue(ctx context.Context, now time.Time) (int64, error)
    ListByUser(ctx context.Context, userID uint64) ([]model.BorrowRecord, error)
    ListOpenByUser(ctx context.Context, userID uint64) ([]model.BorrowRecord, error)
    ListOverdue(ctx context.Context) ([]model.BorrowRecord, error)
    HasAny(ctx context.Context, userID, itemID uint64) (bool, error)
}

// RentalStore is the engine's view of the rental_orders table.
type RentalStore interface {
    Create(ctx context.Context, o *model.RentalOrder) error
    GetByID(ctx context.Context, id uint64) (*model.RentalOrder, error)
    SetState(ctx context.Context, id uint64, to model.RentalState, fromStates ...model.RentalState) error
    MarkExpired(ctx context.Context, now time.Time) (int64, error)
    ExistsActiveAt(ctx context.Context, userID, itemID uint64, now time.Time) (bool, error)
    HasHeld(ctx context.Context, userID, itemID uint64) (bool, error)
    ListByUser(ctx context.Context, userID uint64) ([]model.RentalOrder, error)
    ListActiveByUser(ctx context.Context, userID uint64, now time.Time) ([]model.RentalOrder, error)
    ListByState(ctx context.Context, state model.RentalState) ([]model.RentalOrder, error)
}
