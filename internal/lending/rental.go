package lending

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/library-lending/internal/model"
    "github.com/iliyamo/library-lending/internal/obs"
    "github.com/iliyamo/library-lending/internal/repository"
)

// RentalService runs the digital rental lifecycle.  Rentals carry no
// inventory constraint (any number of users may hold the same item),
// so each operation is a single-row write and needs no surrounding
// transaction.  Payment capture is an external collaborator settled
// before Rent is called, which is why orders are created ACTIVE.
type RentalService struct {
    catalog CatalogStore
    rentals RentalStore
    now     func() time.Time
}

// NewRentalService constructs the rental lifecycle with its stores.
func NewRentalService(catalog CatalogStore, rentals RentalStore) *RentalService {
    if catalog == nil || rentals == nil {
        panic("nil dependency passed to NewRentalService")
    }
    return &RentalService{
        catalog: catalog,
        rentals: rentals,
        now:     func() time.Time { return time.Now().UTC() },
    }
}

// Rent grants the user time-bounded access to a digital licensed item
// for the given number of periods (0 means one).  The expiry is
// periods × the item's configured period length; the price is
// periods × the item's unit price, both snapshotted onto the order.
// There is deliberately no duplicate-rental guard: stacking rentals of
// the same item is allowed.
func (s *RentalService) Rent(ctx context.Context, userID, itemID uint64, periods int) (*model.RentalOrder, error) {
    if periods == 0 {
        periods = 1
    }
    if periods < 1 || periods > MaxRentalPeriods {
        return nil, ErrInvalidPeriods
    }

    it, err := s.catalog.GetByID(ctx, itemID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrItemNotFound
        }
        return nil, err
    }
    if it.Kind != model.KindDigitalLicensed {
        return nil, ErrItemNotRentable
    }
    if it.Status != model.StatusAvailable {
        return nil, ErrItemNotAvailable
    }
    if it.UnitPriceCents == 0 || it.PeriodDays == 0 {
        return nil, ErrRentalConfigMissing
    }

    now := s.now()
    o := &model.RentalOrder{
        UserID:          userID,
        ItemID:          itemID,
        OrderType:       model.OrderRent,
        Periods:         uint32(periods),
        StartedAt:       now,
        ExpiresAt:       now.Add(time.Duration(periods) * time.Duration(it.PeriodDays) * 24 * time.Hour),
        TotalPriceCents: uint32(periods) * it.UnitPriceCents,
        State:           model.RentalActive,
    }
    if err := s.rentals.Create(ctx, o); err != nil {
        return nil, err
    }
    obs.RentalsTotal.Inc()
    return o, nil
}

// Cancel cancels a PENDING order owned by the user.  Orders are
// currently created ACTIVE (payment is settled up front), so this path
// has no reachable success case today; it is kept because the state
// machine defines it and a payment-deferred flow would need it.
func (s *RentalService) Cancel(ctx context.Context, userID, orderID uint64) error {
    o, err := s.rentals.GetByID(ctx, orderID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return ErrOrderNotFound
        }
        return err
    }
    if o.UserID != userID {
        return ErrUnauthorized
    }
    if o.State != model.RentalPending {
        return ErrNotCancellable
    }
    err = s.rentals.SetState(ctx, orderID, model.RentalCancelled, model.RentalPending)
    if errors.Is(err, repository.ErrConflict) {
        return ErrNotCancellable
    }
    return err
}

// ForceReturn is the admin escape hatch: it moves a RENT order to
// RETURNED regardless of its current expiry state.  Non-rental orders
// are rejected.
func (s *RentalService) ForceReturn(ctx context.Context, orderID uint64) error {
    o, err := s.rentals.GetByID(ctx, orderID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return ErrOrderNotFound
        }
        return err
    }
    if o.OrderType != model.OrderRent {
        return ErrNotRental
    }
    return s.rentals.SetState(ctx, orderID, model.RentalReturned)
}

// SweepExpired flips every ACTIVE order past its expiry to EXPIRED and
// returns the number of transitions.  Idempotent for a fixed now.
func (s *RentalService) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
    n, err := s.rentals.MarkExpired(ctx, now)
    if err != nil {
        return 0, err
    }
    obs.SweptExpiredTotal.Add(float64(n))
    return n, nil
}

// IsActive reports whether the user holds an unexpired ACTIVE rental
// for the item right now.
func (s *RentalService) IsActive(ctx context.Context, userID, itemID uint64) (bool, error) {
    return s.rentals.ExistsActiveAt(ctx, userID, itemID, s.now())
}

// History returns the user's rental history, newest first.
func (s *RentalService) History(ctx context.Context, userID uint64) ([]model.RentalOrder, error) {
    return s.rentals.ListByUser(ctx, userID)
}

// Active returns the user's currently usable rentals.
func (s *RentalService) Active(ctx context.Context, userID uint64) ([]model.RentalOrder, error) {
    return s.rentals.ListActiveByUser(ctx, userID, s.now())
}

// Expired returns every EXPIRED rental.  Admin report.
func (s *RentalService) Expired(ctx context.Context) ([]model.RentalOrder, error) {
    return s.rentals.ListByState(ctx, model.RentalExpired)
}
