package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/library-lending/internal/model"
)

// BorrowRepo provides data access to the borrow_records table.  One
// row is one physical lending transaction.  Rows are created and
// closed only through the borrow lifecycle; the sweeper flips open
// rows to OVERDUE in bulk.  All timestamps are stored in UTC.
type BorrowRepo struct {
    db *sql.DB
}

// NewBorrowRepo returns a new BorrowRepo bound to the given database.
func NewBorrowRepo(db *sql.DB) *BorrowRepo { return &BorrowRepo{db: db} }

const borrowCols = `id, user_id, item_id, borrowed_at, due_at, returned_at, state`

func scanBorrow(row interface{ Scan(...any) error }) (*model.BorrowRecord, error) {
    var rec model.BorrowRecord
    var returned sql.NullTime
    err := row.Scan(&rec.ID, &rec.UserID, &rec.ItemID,
        &rec.BorrowedAt, &rec.DueAt, &returned, &rec.State)
    if err != nil {
        return nil, err
    }
    if returned.Valid {
        t := returned.Time
        rec.ReturnedAt = &t
    }
    return &rec, nil
}

// CreateTx inserts a new borrow record within the scope of an existing
// transaction and populates the generated ID.  The caller must commit
// or roll back the transaction; on rollback the copy reserved in the
// same transaction is returned to the shelf with it.
func (r *BorrowRepo) CreateTx(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error {
    const q = `INSERT INTO borrow_records (user_id, item_id, borrowed_at, due_at, state)
               VALUES (?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, rec.UserID, rec.ItemID,
        rec.BorrowedAt.UTC(), rec.DueAt.UTC(), rec.State)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    rec.ID = uint64(id)
    return nil
}

// GetByIDTx loads a single borrow record within a transaction, locking
// the row FOR UPDATE so that concurrent returns of the same record
// serialize.  Returns sql.ErrNoRows when the record does not exist.
func (r *BorrowRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.BorrowRecord, error) {
    return scanBorrow(tx.QueryRowContext(ctx,
        `SELECT `+borrowCols+` FROM borrow_records WHERE id = ? FOR UPDATE`, id))
}

// CountOpenTx counts the user's borrow records that still hold a copy
// (ACTIVE or OVERDUE, not yet returned).  Executed inside the borrow
// transaction so the limit check and the insert see the same snapshot.
func (r *BorrowRepo) CountOpenTx(ctx context.Context, tx *sql.Tx, userID uint64) (int, error) {
    var n int
    err := tx.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM borrow_records
         WHERE user_id = ? AND state IN ('ACTIVE','OVERDUE') AND returned_at IS NULL`,
        userID).Scan(&n)
    return n, err
}

// ExistsOpenTx reports whether the user already holds an open borrow
// for the given item.
func (r *BorrowRepo) ExistsOpenTx(ctx context.Context, tx *sql.Tx, userID, itemID uint64) (bool, error) {
    var n int
    err := tx.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM borrow_records
         WHERE user_id = ? AND item_id = ? AND state IN ('ACTIVE','OVERDUE') AND returned_at IS NULL`,
        userID, itemID).Scan(&n)
    return n > 0, err
}

// MarkReturnedTx closes a borrow record: sets returned_at and the
// final state (RETURNED or RETURNED_LATE).  The guard on returned_at
// keeps a double return from rewriting an already closed row.
func (r *BorrowRepo) MarkReturnedTx(ctx context.Context, tx *sql.Tx, id uint64, at time.Time, state model.BorrowState) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE borrow_records SET returned_at = ?, state = ? WHERE id = ? AND returned_at IS NULL`,
        at.UTC(), state, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrConflict
    }
    return nil
}

// MarkOverdue flips every ACTIVE record whose due date has passed to
// OVERDUE and returns how many rows changed.  The statement is
// idempotent: a second run with the same now matches nothing.
func (r *BorrowRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `UPDATE borrow_records SET state = 'OVERDUE'
         WHERE state = 'ACTIVE' AND returned_at IS NULL AND due_at < ?`,
        now.UTC())
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// ListByUser returns the user's borrow history, newest first.
func (r *BorrowRepo) ListByUser(ctx context.Context, userID uint64) ([]model.BorrowRecord, error) {
    return r.list(ctx,
        `SELECT `+borrowCols+` FROM borrow_records WHERE user_id = ? ORDER BY borrowed_at DESC`,
        userID)
}

// ListOpenByUser returns the user's borrows that still hold a copy.
func (r *BorrowRepo) ListOpenByUser(ctx context.Context, userID uint64) ([]model.BorrowRecord, error) {
    return r.list(ctx,
        `SELECT `+borrowCols+` FROM borrow_records
         WHERE user_id = ? AND state IN ('ACTIVE','OVERDUE') AND returned_at IS NULL
         ORDER BY due_at`,
        userID)
}

// ListOverdue returns all currently overdue borrows, oldest due date
// first.  Used by the admin overdue report.
func (r *BorrowRepo) ListOverdue(ctx context.Context) ([]model.BorrowRecord, error) {
    return r.list(ctx,
        `SELECT `+borrowCols+` FROM borrow_records
         WHERE state = 'OVERDUE' AND returned_at IS NULL
         ORDER BY due_at`)
}

// HasAny reports whether the user has ever held a borrow record for
// the item, in any state.  Consulted by access verification.
func (r *BorrowRepo) HasAny(ctx context.Context, userID, itemID uint64) (bool, error) {
    var n int
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM borrow_records WHERE user_id = ? AND item_id = ?`,
        userID, itemID).Scan(&n)
    return n > 0, err
}

func (r *BorrowRepo) list(ctx context.Context, q string, args ...any) ([]model.BorrowRecord, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    recs := make([]model.BorrowRecord, 0)
    for rows.Next() {
        rec, err := scanBorrow(rows)
        if err != nil {
            return nil, err
        }
        recs = append(recs, *rec)
    }
    return recs, rows.Err()
}
