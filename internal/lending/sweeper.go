package lending

import (
    "context"
    "log"
    "time"
)

// Sweeper periodically transitions overdue borrows and expired
// rentals.  Each pass is two idempotent bulk updates, so a failed or
// repeated pass needs no bookkeeping; it is simply retried on the
// next tick.  The same pass is also exposed to admins as a manual
// endpoint; both entry points call RunOnce.
type Sweeper struct {
    borrows  *BorrowService
    rentals  *RentalService
    interval time.Duration
}

// NewSweeper builds a sweeper over both lifecycles.  A non-positive
// interval falls back to the default policy's.
func NewSweeper(borrows *BorrowService, rentals *RentalService, interval time.Duration) *Sweeper {
    if borrows == nil || rentals == nil {
        panic("nil service passed to NewSweeper")
    }
    if interval <= 0 {
        interval = DefaultConfig().SweepInterval
    }
    return &Sweeper{borrows: borrows, rentals: rentals, interval: interval}
}

// RunOnce executes a single sweep pass at the given instant and
// returns how many borrows went OVERDUE and how many rentals went
// EXPIRED.  The two sweeps are independent; a failure in the first
// aborts the pass and is reported to the caller.
func (s *Sweeper) RunOnce(ctx context.Context, now time.Time) (overdue, expired int64, err error) {
    overdue, err = s.borrows.SweepOverdue(ctx, now)
    if err != nil {
        return 0, 0, err
    }
    expired, err = s.rentals.SweepExpired(ctx, now)
    if err != nil {
        return overdue, 0, err
    }
    return overdue, expired, nil
}

// Run loops RunOnce on the configured interval until the context is
// cancelled.  Errors are logged and swallowed: transitions are
// idempotent, so whatever a failed pass missed is picked up by the
// next one.  Intended to be started as a goroutine from main.
func (s *Sweeper) Run(ctx context.Context) {
    log.Printf("sweeper: running every %s", s.interval)
    ticker := time.NewTicker(s.interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            log.Printf("sweeper: stopping: %v", ctx.Err())
            return
        case <-ticker.C:
            overdue, expired, err := s.RunOnce(ctx, time.Now().UTC())
            if err != nil {
                log.Printf("sweeper: pass failed: %v", err)
                continue
            }
            if overdue > 0 || expired > 0 {
                log.Printf("sweeper: %d borrows overdue, %d rentals expired", overdue, expired)
            }
        }
    }
}
