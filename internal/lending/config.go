package lending

import "time"

// Hard bounds on request parameters.  These are business constants of
// the platform, not tunables: a borrow may run 1–90 days and a rental
// may cover 1–12 periods.
const (
    MinBorrowDays    = 1
    MaxBorrowDays    = 90
    MaxRentalPeriods = 12
)

// Config carries the tunable lending policy.  The borrow cap and the
// default duration are deliberately configuration rather than
// compile-time constants so deployments can adjust them without a
// rebuild.
type Config struct {
    // MaxActiveBorrows caps how many ACTIVE/OVERDUE borrows a single
    // user may hold system-wide.
    MaxActiveBorrows int
    // DefaultBorrowDays is the due-date offset applied when a borrow
    // request does not specify a duration.
    DefaultBorrowDays int
    // SweepInterval is how often the background sweeper runs.
    SweepInterval time.Duration
}

// DefaultConfig returns the stock policy: five concurrent borrows,
// fourteen-day loans, hourly sweeps.
func DefaultConfig() Config {
    return Config{
        MaxActiveBorrows:  5,
        DefaultBorrowDays: 14,
        SweepInterval:     time.Hour,
    }
}
