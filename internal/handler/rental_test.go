package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/library-lending/internal/model"
)

func TestRentalRespExpiredLeadsStoredState(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	o := &model.RentalOrder{
		ID: 5, UserID: 7, ItemID: 3,
		OrderType: model.OrderRent, Periods: 1,
		StartedAt: now.Add(-40 * 24 * time.Hour),
		ExpiresAt: now.Add(-10 * 24 * time.Hour),
		State:     model.RentalActive,
	}

	// The sweeper has not flipped the row yet: state says ACTIVE but
	// the response already reports the window as closed.
	resp := toRentalResp(o, now)
	assert.Equal(t, string(model.RentalActive), resp.State)
	assert.True(t, resp.Expired)

	o.ExpiresAt = now.Add(24 * time.Hour)
	assert.False(t, toRentalResp(o, now).Expired)
}
