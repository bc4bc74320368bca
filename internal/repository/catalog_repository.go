package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/iliyamo/library-lending/internal/model"
)

// CatalogRepo provides data access to the catalog_items table.  It is
// used by catalog management for CRUD and by the lending engine for
// reads and copy-counter mutations.  All timestamps are stored in UTC.
//
// The copy counters (available_copies, total_copies) and the derived
// OUT_OF_STOCK status are mutated exclusively through ReserveCopyTx,
// ReleaseCopyTx and ResizeTx so that every mutation path goes through
// the same guarded statements.
type CatalogRepo struct {
    db *sql.DB
}

// NewCatalogRepo returns a new CatalogRepo bound to the given database.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// that span the catalog and the lifecycle tables.
func (r *CatalogRepo) DB() *sql.DB { return r.db }

const catalogCols = `id, title, author, isbn, kind, status,
       COALESCE(total_copies, 0), COALESCE(available_copies, 0),
       COALESCE(unit_price_cents, 0), COALESCE(period_days, 0),
       created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*model.CatalogItem, error) {
    var it model.CatalogItem
    var isbn sql.NullString
    err := row.Scan(
        &it.ID, &it.Title, &it.Author, &isbn, &it.Kind, &it.Status,
        &it.TotalCopies, &it.AvailableCopies,
        &it.UnitPriceCents, &it.PeriodDays,
        &it.CreatedAt, &it.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    if isbn.Valid {
        s := isbn.String
        it.ISBN = &s
    }
    return &it, nil
}

// Create inserts a new catalog item and populates the generated ID and
// timestamps on the provided struct.  Kind-specific fields are written
// as NULL when they do not apply to the item's kind.  A duplicate ISBN
// surfaces as ErrConflict.
func (r *CatalogRepo) Create(ctx context.Context, it *model.CatalogItem) error {
    const q = `INSERT INTO catalog_items
               (title, author, isbn, kind, status, total_copies, available_copies, unit_price_cents, period_days)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    var totalCopies, availCopies, price, period any
    if it.Kind == model.KindPhysical {
        totalCopies, availCopies = it.TotalCopies, it.AvailableCopies
    }
    if it.Kind == model.KindDigitalLicensed {
        price, period = it.UnitPriceCents, it.PeriodDays
    }
    var isbn any
    if it.ISBN != nil {
        isbn = *it.ISBN
    }
    res, err := r.db.ExecContext(ctx, q, it.Title, it.Author, isbn, it.Kind, it.Status,
        totalCopies, availCopies, price, period)
    if err != nil {
        // MySQL error 1062 = duplicate key (unique ISBN index)
        if strings.Contains(err.Error(), "1062") {
            return ErrConflict
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    it.ID = uint64(id)
    return r.db.QueryRowContext(ctx,
        `SELECT created_at, updated_at FROM catalog_items WHERE id = ?`, it.ID).
        Scan(&it.CreatedAt, &it.UpdatedAt)
}

// GetByID returns a single catalog item.  When no item with the given
// ID exists, sql.ErrNoRows is returned.
func (r *CatalogRepo) GetByID(ctx context.Context, id uint64) (*model.CatalogItem, error) {
    return scanItem(r.db.QueryRowContext(ctx,
        `SELECT `+catalogCols+` FROM catalog_items WHERE id = ?`, id))
}

// GetByIDTx is GetByID within a transaction.  The row is locked with
// FOR UPDATE so that lifecycle flows reading the item before mutating
// counters serialize against concurrent resize/disable operations.
func (r *CatalogRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.CatalogItem, error) {
    return scanItem(tx.QueryRowContext(ctx,
        `SELECT `+catalogCols+` FROM catalog_items WHERE id = ? FOR UPDATE`, id))
}

// List returns a page of catalog items ordered by title.  Offset-based
// pagination keeps the endpoint simple; callers cap the limit.
func (r *CatalogRepo) List(ctx context.Context, limit, offset int) ([]model.CatalogItem, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+catalogCols+` FROM catalog_items ORDER BY title, id LIMIT ? OFFSET ?`,
        limit, offset)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    items := make([]model.CatalogItem, 0)
    for rows.Next() {
        it, err := scanItem(rows)
        if err != nil {
            return nil, err
        }
        items = append(items, *it)
    }
    return items, rows.Err()
}

// Update rewrites the admin-editable fields of an item.  Copy counters
// are deliberately excluded; quantity changes go through ResizeTx.
func (r *CatalogRepo) Update(ctx context.Context, it *model.CatalogItem) error {
    const q = `UPDATE catalog_items
               SET title = ?, author = ?, isbn = ?, unit_price_cents = ?, period_days = ?
               WHERE id = ?`
    var isbn any
    if it.ISBN != nil {
        isbn = *it.ISBN
    }
    var price, period any
    if it.Kind == model.KindDigitalLicensed {
        price, period = it.UnitPriceCents, it.PeriodDays
    }
    res, err := r.db.ExecContext(ctx, q, it.Title, it.Author, isbn, price, period, it.ID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return sql.ErrNoRows
    }
    return nil
}

// SetStatus explicitly sets an item's status.  Used by admins to
// disable or re-enable an item; the OUT_OF_STOCK transitions for
// physical items are handled by the allocator statements instead.
func (r *CatalogRepo) SetStatus(ctx context.Context, id uint64, status model.ItemStatus) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE catalog_items SET status = ? WHERE id = ?`, status, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return sql.ErrNoRows
    }
    return nil
}

// ReserveCopyTx atomically takes one copy of a physical item off the
// shelf.  The check and the decrement are a single UPDATE, so MySQL's
// row lock serializes concurrent reservations and the guard
// available_copies > 0 can never be overtaken: when one copy remains,
// exactly one of N racing calls matches the row.  The status flip to
// OUT_OF_STOCK is computed from the pre-decrement value (assignments
// evaluate left to right).
//
// It returns true when a copy was reserved and false when the guard
// did not match; the caller disambiguates why via a follow-up read.
func (r *CatalogRepo) ReserveCopyTx(ctx context.Context, tx *sql.Tx, itemID uint64) (bool, error) {
    const q = `UPDATE catalog_items
               SET status = IF(available_copies = 1, 'OUT_OF_STOCK', status),
                   available_copies = available_copies - 1
               WHERE id = ? AND kind = 'PHYSICAL' AND available_copies > 0`
    res, err := tx.ExecContext(ctx, q, itemID)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n == 1, nil
}

// ReleaseCopyTx puts one copy of a physical item back on the shelf.
// The increment is capped at total_copies so that a stray double
// release cannot push the counter past the owned stock, and an
// OUT_OF_STOCK item becomes AVAILABLE again (unless disabled).  The
// status flip additionally requires total_copies > 0: when the item
// was resized to zero while a copy was out, the capped increment
// leaves available_copies at zero and the item must stay OUT_OF_STOCK.
func (r *CatalogRepo) ReleaseCopyTx(ctx context.Context, tx *sql.Tx, itemID uint64) error {
    const q = `UPDATE catalog_items
               SET status = IF(status = 'OUT_OF_STOCK' AND total_copies > 0, 'AVAILABLE', status),
                   available_copies = LEAST(available_copies + 1, total_copies)
               WHERE id = ? AND kind = 'PHYSICAL'`
    res, err := tx.ExecContext(ctx, q, itemID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return sql.ErrNoRows
    }
    return nil
}

// ResizeTx changes the total copy count of a physical item.  Copies
// currently out with borrowers are preserved: the new available count
// is max(0, newTotal - borrowed) where borrowed = oldTotal - oldAvail.
// The row is locked FOR UPDATE for the read-compute-write, and the
// status is re-derived from the new available count.  Returns the
// updated item.
func (r *CatalogRepo) ResizeTx(ctx context.Context, tx *sql.Tx, itemID uint64, newTotal uint32) (*model.CatalogItem, error) {
    it, err := r.GetByIDTx(ctx, tx, itemID)
    if err != nil {
        return nil, err
    }
    if it.Kind != model.KindPhysical {
        return nil, ErrNotPhysical
    }
    borrowed := it.TotalCopies - it.AvailableCopies
    var newAvail uint32
    if newTotal > borrowed {
        newAvail = newTotal - borrowed
    }
    status := it.Status
    if status != model.StatusDisabled {
        if newAvail == 0 {
            status = model.StatusOutOfStock
        } else {
            status = model.StatusAvailable
        }
    }
    _, err = tx.ExecContext(ctx,
        `UPDATE catalog_items SET total_copies = ?, available_copies = ?, status = ? WHERE id = ?`,
        newTotal, newAvail, status, itemID)
    if err != nil {
        return nil, err
    }
    it.TotalCopies = newTotal
    it.AvailableCopies = newAvail
    it.Status = status
    it.UpdatedAt = time.Now().UTC()
    return it, nil
}
