package lending

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/library-lending/internal/model"
    "github.com/iliyamo/library-lending/internal/obs"
)

// BorrowService runs the physical borrow lifecycle.  Borrow and Return
// each execute as one database transaction covering both the lifecycle
// record and the inventory counter, so a crash mid-operation can never
// leave a copy permanently lost or permanently out: either both writes
// land or neither does.
type BorrowService struct {
    db      *sql.DB
    catalog CatalogStore
    borrows BorrowStore
    alloc   *Allocator
    cfg     Config
    now     func() time.Time
}

// NewBorrowService constructs the borrow lifecycle with its stores and
// policy.  All dependencies must be non-nil.
func NewBorrowService(db *sql.DB, catalog CatalogStore, borrows BorrowStore, alloc *Allocator, cfg Config) *BorrowService {
    if db == nil || catalog == nil || borrows == nil || alloc == nil {
        panic("nil dependency passed to NewBorrowService")
    }
    return &BorrowService{
        db:      db,
        catalog: catalog,
        borrows: borrows,
        alloc:   alloc,
        cfg:     cfg,
        now:     func() time.Time { return time.Now().UTC() },
    }
}

// Borrow lends one physical copy of an item to a user for durationDays
// (0 means the configured default).  It enforces, in order: the item
// is a borrowable physical item; the user is under the active-borrow
// cap; the user does not already hold this item; and a copy is
// actually left on the shelf.  The stock check and the record insert
// happen in one transaction, with the allocator's guarded decrement as
// the final arbiter, so two requests racing for the last copy cannot
// both succeed.
func (s *BorrowService) Borrow(ctx context.Context, userID, itemID uint64, durationDays int) (*model.BorrowRecord, error) {
    if durationDays == 0 {
        durationDays = s.cfg.DefaultBorrowDays
    }
    if durationDays < MinBorrowDays || durationDays > MaxBorrowDays {
        return nil, ErrInvalidDuration
    }

    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    it, err := s.catalog.GetByIDTx(ctx, tx, itemID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrItemNotFound
        }
        return nil, err
    }
    if it.Kind != model.KindPhysical || it.Status == model.StatusDisabled {
        return nil, ErrItemNotBorrowable
    }

    open, err := s.borrows.CountOpenTx(ctx, tx, userID)
    if err != nil {
        return nil, err
    }
    if open >= s.cfg.MaxActiveBorrows {
        return nil, ErrBorrowLimitExceeded
    }

    dup, err := s.borrows.ExistsOpenTx(ctx, tx, userID, itemID)
    if err != nil {
        return nil, err
    }
    if dup {
        return nil, ErrAlreadyBorrowed
    }

    if err := s.alloc.ReserveTx(ctx, tx, itemID); err != nil {
        return nil, err
    }

    now := s.now()
    rec := &model.BorrowRecord{
        UserID:     userID,
        ItemID:     itemID,
        BorrowedAt: now,
        DueAt:      now.Add(time.Duration(durationDays) * 24 * time.Hour),
        State:      model.BorrowActive,
    }
    if err := s.borrows.CreateTx(ctx, tx, rec); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    obs.BorrowsTotal.Inc()
    return rec, nil
}

// Return closes a borrow record owned by the user and puts the copy
// back on the shelf.  Marking the record returned and releasing the
// copy are one transaction; a double return is rejected before any
// counter moves, so the shelf can never be over-credited.
func (s *BorrowService) Return(ctx context.Context, userID, recordID uint64) (*model.BorrowRecord, error) {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    rec, err := s.borrows.GetByIDTx(ctx, tx, recordID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrRecordNotFound
        }
        return nil, err
    }
    if rec.UserID != userID {
        return nil, ErrUnauthorized
    }
    if rec.ReturnedAt != nil || !rec.State.Open() {
        return nil, ErrAlreadyReturned
    }

    now := s.now()
    state := model.BorrowReturned
    if now.After(rec.DueAt) {
        state = model.BorrowReturnedLate
    }
    if err := s.borrows.MarkReturnedTx(ctx, tx, rec.ID, now, state); err != nil {
        return nil, err
    }
    if err := s.alloc.ReleaseTx(ctx, tx, rec.ItemID); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    obs.ReturnsTotal.Inc()

    rec.ReturnedAt = &now
    rec.State = state
    return rec, nil
}

// SweepOverdue flips every ACTIVE record past its due date to OVERDUE
// and returns the number of transitions.  Pure state change: the copy
// stays out either way.  Idempotent for a fixed now.
func (s *BorrowService) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
    n, err := s.borrows.MarkOverdue(ctx, now)
    if err != nil {
        return 0, err
    }
    obs.SweptOverdueTotal.Add(float64(n))
    return n, nil
}

// History returns the user's full borrow history, newest first.
func (s *BorrowService) History(ctx context.Context, userID uint64) ([]model.BorrowRecord, error) {
    return s.borrows.ListByUser(ctx, userID)
}

// Active returns the user's borrows that still hold a copy.
func (s *BorrowService) Active(ctx context.Context, userID uint64) ([]model.BorrowRecord, error) {
    return s.borrows.ListOpenByUser(ctx, userID)
}

// Overdue returns every currently overdue borrow.  Admin report.
func (s *BorrowService) Overdue(ctx context.Context) ([]model.BorrowRecord, error) {
    return s.borrows.ListOverdue(ctx)
}
