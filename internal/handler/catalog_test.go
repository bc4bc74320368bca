package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/library-lending/internal/model"
)

func TestItemRespLendingFlags(t *testing.T) {
	physical := &model.CatalogItem{
		ID: 1, Kind: model.KindPhysical, Status: model.StatusAvailable,
		TotalCopies: 3, AvailableCopies: 1,
	}
	resp := toItemResp(physical)
	assert.True(t, resp.Borrowable)
	assert.False(t, resp.Rentable)

	// Derived OUT_OF_STOCK turns the flag off without touching totals.
	physical.Status = model.StatusOutOfStock
	physical.AvailableCopies = 0
	assert.False(t, toItemResp(physical).Borrowable)

	licensed := &model.CatalogItem{
		ID: 2, Kind: model.KindDigitalLicensed, Status: model.StatusAvailable,
		UnitPriceCents: 499, PeriodDays: 30,
	}
	resp = toItemResp(licensed)
	assert.True(t, resp.Rentable)
	assert.False(t, resp.Borrowable)

	// A licensed item without a configured price is browsable but
	// cannot be rented yet.
	licensed.UnitPriceCents = 0
	assert.False(t, toItemResp(licensed).Rentable)
}
