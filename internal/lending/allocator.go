package lending

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/library-lending/internal/model"
    "github.com/iliyamo/library-lending/internal/repository"
)

// Allocator owns the physical copy counters.  Every mutation of
// catalog_items.available_copies in the system goes through it, either
// inside a caller-supplied transaction (the lifecycle flows) or in a
// transaction of its own (the admin resize path).  The store's guarded
// single-statement updates make concurrent reservations on the same
// item serialize at the row lock, so reserving past zero is impossible
// even under N racing borrow requests.
type Allocator struct {
    db      *sql.DB
    catalog CatalogStore
}

// NewAllocator returns an Allocator bound to the given database and
// catalog store.
func NewAllocator(db *sql.DB, catalog CatalogStore) *Allocator {
    return &Allocator{db: db, catalog: catalog}
}

// ReserveTx takes one copy of a physical item within the caller's
// transaction.  On guard failure it reads the item once to tell the
// caller why: ErrItemNotFound, ErrItemNotPhysical or ErrOutOfStock.
// If the transaction later rolls back, the decrement rolls back with
// it, so a cancelled request never leaks a copy.
func (a *Allocator) ReserveTx(ctx context.Context, tx *sql.Tx, itemID uint64) error {
    ok, err := a.catalog.ReserveCopyTx(ctx, tx, itemID)
    if err != nil {
        return err
    }
    if ok {
        return nil
    }
    it, err := a.catalog.GetByIDTx(ctx, tx, itemID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return ErrItemNotFound
        }
        return err
    }
    if it.Kind != model.KindPhysical {
        return ErrItemNotPhysical
    }
    return ErrOutOfStock
}

// ReleaseTx returns one copy to the shelf within the caller's
// transaction.  Exactly one release per prior successful reserve is
// the caller's responsibility; the store still caps the counter at
// total_copies as a backstop.
func (a *Allocator) ReleaseTx(ctx context.Context, tx *sql.Tx, itemID uint64) error {
    err := a.catalog.ReleaseCopyTx(ctx, tx, itemID)
    if errors.Is(err, sql.ErrNoRows) {
        return ErrItemNotFound
    }
    return err
}

// Resize changes an item's total copy count in its own transaction.
// Copies currently out with borrowers stay out: the new available
// count is max(0, newTotal - borrowed).  Used by catalog management,
// never by the lending flow.
func (a *Allocator) Resize(ctx context.Context, itemID uint64, newTotal uint32) (*model.CatalogItem, error) {
    tx, err := a.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    it, err := a.catalog.ResizeTx(ctx, tx, itemID, newTotal)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrItemNotFound
        }
        if errors.Is(err, repository.ErrNotPhysical) {
            return nil, ErrItemNotPhysical
        }
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return it, nil
}
