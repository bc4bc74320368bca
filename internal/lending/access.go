package lending

import "context"

// AccessVerifier answers "has this user ever held access to this
// item".  It is a pure read over the two lifecycle stores, consumed by
// the review subsystem to mark reviews as verified; the fact is
// computed on demand and never materialized.
type AccessVerifier struct {
    borrows BorrowStore
    rentals RentalStore
}

// NewAccessVerifier constructs the verifier over the lifecycle stores.
func NewAccessVerifier(borrows BorrowStore, rentals RentalStore) *AccessVerifier {
    if borrows == nil || rentals == nil {
        panic("nil store passed to NewAccessVerifier")
    }
    return &AccessVerifier{borrows: borrows, rentals: rentals}
}

// HasAccessed reports whether the user has ever borrowed the item (any
// state counts, even a returned borrow proves access) or held a
// rental that reached ACTIVE, EXPIRED or RETURNED.  Cancelled orders
// never granted access and do not count.
func (v *AccessVerifier) HasAccessed(ctx context.Context, userID, itemID uint64) (bool, error) {
    borrowed, err := v.borrows.HasAny(ctx, userID, itemID)
    if err != nil {
        return false, err
    }
    if borrowed {
        return true, nil
    }
    return v.rentals.HasHeld(ctx, userID, itemID)
}
