package lending

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasAccessedViaBorrow(t *testing.T) {
	borrows := &fakeBorrows{
		hasAny: func(_ context.Context, _, _ uint64) (bool, error) { return true, nil },
	}
	// Rental store must not be consulted once a borrow is found.
	v := NewAccessVerifier(borrows, &fakeRentals{})

	ok, err := v.HasAccessed(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasAccessedViaRental(t *testing.T) {
	borrows := &fakeBorrows{
		hasAny: func(_ context.Context, _, _ uint64) (bool, error) { return false, nil },
	}
	rentals := &fakeRentals{
		hasHeld: func(_ context.Context, _, _ uint64) (bool, error) { return true, nil },
	}
	v := NewAccessVerifier(borrows, rentals)

	ok, err := v.HasAccessed(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasAccessedNeither(t *testing.T) {
	borrows := &fakeBorrows{
		hasAny: func(_ context.Context, _, _ uint64) (bool, error) { return false, nil },
	}
	rentals := &fakeRentals{
		hasHeld: func(_ context.Context, _, _ uint64) (bool, error) { return false, nil },
	}
	v := NewAccessVerifier(borrows, rentals)

	ok, err := v.HasAccessed(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSweeperRunOnce(t *testing.T) {
	borrows := &fakeBorrows{
		markOverdue: func(_ context.Context, _ time.Time) (int64, error) { return 4, nil },
	}
	rentals := &fakeRentals{
		markExpired: func(_ context.Context, _ time.Time) (int64, error) { return 1, nil },
	}
	bs, _ := newBorrowService(t, &fakeCatalog{}, borrows)
	rs := newRentalService(&fakeCatalog{}, rentals)
	sw := NewSweeper(bs, rs, time.Minute)

	overdue, expired, err := sw.RunOnce(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(4), overdue)
	assert.Equal(t, int64(1), expired)

	// A second pass with nothing left to flip is a no-op, not an error.
	borrows.markOverdue = func(_ context.Context, _ time.Time) (int64, error) { return 0, nil }
	rentals.markExpired = func(_ context.Context, _ time.Time) (int64, error) { return 0, nil }
	overdue, expired, err = sw.RunOnce(context.Background(), testNow)
	require.NoError(t, err)
	assert.Zero(t, overdue)
	assert.Zero(t, expired)
}
