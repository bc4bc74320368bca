package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/library-lending/internal/model"
)

// RentalRepo provides data access to the rental_orders table.  One row
// is one time-bounded access grant to a digital licensed item.  There
// is no inventory coupling: rental rows never touch catalog counters.
// All timestamps are stored in UTC.
type RentalRepo struct {
    db *sql.DB
}

// NewRentalRepo returns a new RentalRepo bound to the given database.
func NewRentalRepo(db *sql.DB) *RentalRepo { return &RentalRepo{db: db} }

const rentalCols = `id, user_id, item_id, order_type, periods, started_at, expires_at, total_price_cents, state`

func scanRental(row interface{ Scan(...any) error }) (*model.RentalOrder, error) {
    var o model.RentalOrder
    err := row.Scan(&o.ID, &o.UserID, &o.ItemID, &o.OrderType, &o.Periods,
        &o.StartedAt, &o.ExpiresAt, &o.TotalPriceCents, &o.State)
    if err != nil {
        return nil, err
    }
    return &o, nil
}

// Create inserts a new rental order and populates the generated ID.
// Orders are a single-row write, so no surrounding transaction is
// needed; price and expiry are computed by the lifecycle before the
// call and stored denormalized so later item edits cannot rewrite
// history.
func (r *RentalRepo) Create(ctx context.Context, o *model.RentalOrder) error {
    const q = `INSERT INTO rental_orders
               (user_id, item_id, order_type, periods, started_at, expires_at, total_price_cents, state)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, o.UserID, o.ItemID, o.OrderType, o.Periods,
        o.StartedAt.UTC(), o.ExpiresAt.UTC(), o.TotalPriceCents, o.State)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    o.ID = uint64(id)
    return nil
}

// GetByID returns a single rental order.  Returns sql.ErrNoRows when
// the order does not exist.
func (r *RentalRepo) GetByID(ctx context.Context, id uint64) (*model.RentalOrder, error) {
    return scanRental(r.db.QueryRowContext(ctx,
        `SELECT `+rentalCols+` FROM rental_orders WHERE id = ?`, id))
}

// SetState moves an order to the given state.  The fromStates guard
// makes the transition conditional; passing no fromStates allows the
// transition from any state.  Returns ErrConflict when the guard did
// not match (the order was not in an allowed source state).
func (r *RentalRepo) SetState(ctx context.Context, id uint64, to model.RentalState, fromStates ...model.RentalState) error {
    q := `UPDATE rental_orders SET state = ? WHERE id = ?`
    args := []any{to, id}
    if len(fromStates) > 0 {
        q += ` AND state IN (?` + repeat(",?", len(fromStates)-1) + `)`
        for _, s := range fromStates {
            args = append(args, s)
        }
    }
    res, err := r.db.ExecContext(ctx, q, args...)
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

func repeat(s string, n int) string {
    out := ""
    for i := 0; i < n; i++ {
        out += s
    }
    return out
}

// MarkExpired flips every ACTIVE rental whose expiry has passed to
// EXPIRED and returns how many rows changed.  Idempotent for a fixed
// now, like the borrow sweep.
func (r *RentalRepo) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `UPDATE rental_orders SET state = 'EXPIRED'
         WHERE order_type = 'RENT' AND state = 'ACTIVE' AND expires_at < ?`,
        now.UTC())
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// ExistsActiveAt reports whether the user holds an ACTIVE, unexpired
// rental for the item at the given instant.
func (r *RentalRepo) ExistsActiveAt(ctx context.Context, userID, itemID uint64, now time.Time) (bool, error) {
    var n int
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM rental_orders
         WHERE user_id = ? AND item_id = ? AND order_type = 'RENT'
           AND state = 'ACTIVE' AND expires_at > ?`,
        userID, itemID, now.UTC()).Scan(&n)
    return n > 0, err
}

// HasHeld reports whether the user has ever held access to the item
// through a rental: an order in ACTIVE, EXPIRED or RETURNED state.
// CANCELLED and PENDING orders never granted access and do not count.
func (r *RentalRepo) HasHeld(ctx context.Context, userID, itemID uint64) (bool, error) {
    var n int
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM rental_orders
         WHERE user_id = ? AND item_id = ? AND order_type = 'RENT'
           AND state IN ('ACTIVE','EXPIRED','RETURNED')`,
        userID, itemID).Scan(&n)
    return n > 0, err
}

// ListByUser returns the user's rental history, newest first.
func (r *RentalRepo) ListByUser(ctx context.Context, userID uint64) ([]model.RentalOrder, error) {
    return r.list(ctx,
        `SELECT `+rentalCols+` FROM rental_orders
         WHERE user_id = ? AND order_type = 'RENT'
         ORDER BY started_at DESC`,
        userID)
}

// ListActiveByUser returns the user's rentals that are ACTIVE and not
// yet past expiry.
func (r *RentalRepo) ListActiveByUser(ctx context.Context, userID uint64, now time.Time) ([]model.RentalOrder, error) {
    return r.list(ctx,
        `SELECT `+rentalCols+` FROM rental_orders
         WHERE user_id = ? AND order_type = 'RENT' AND state = 'ACTIVE' AND expires_at > ?
         ORDER BY expires_at`,
        userID, now.UTC())
}

// ListByState returns all RENT orders in the given state, used by the
// admin expired/returned reports.
func (r *RentalRepo) ListByState(ctx context.Context, state model.RentalState) ([]model.RentalOrder, error) {
    return r.list(ctx,
        `SELECT `+rentalCols+` FROM rental_orders
         WHERE order_type = 'RENT' AND state = ?
         ORDER BY expires_at`,
        state)
}

func (r *RentalRepo) list(ctx context.Context, q string, args ...any) ([]model.RentalOrder, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    orders := make([]model.RentalOrder, 0)
    for rows.Next() {
        o, err := scanRental(rows)
        if err != nil {
            return nil, err
        }
        orders = append(orders, *o)
    }
    return orders, rows.Err()
}
