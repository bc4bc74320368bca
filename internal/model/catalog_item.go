package model

import "time"

// ItemKind enumerates the three kinds of catalog items the platform
// lends out.  Physical items carry a finite copy count, free digital
// items are unconstrained, and licensed digital items grant
// time-bounded access after a rental payment.
type ItemKind string

const (
    KindPhysical        ItemKind = "PHYSICAL"
    KindDigitalFree     ItemKind = "DIGITAL_FREE"
    KindDigitalLicensed ItemKind = "DIGITAL_LICENSED"
)

// ItemStatus describes the availability of a catalog item.  For
// physical items OUT_OF_STOCK is derived from the copy counters by
// the inventory allocator; DISABLED is set explicitly by admins.
type ItemStatus string

const (
    StatusAvailable  ItemStatus = "AVAILABLE"
    StatusOutOfStock ItemStatus = "OUT_OF_STOCK"
    StatusDisabled   ItemStatus = "DISABLED"
)

// CatalogItem mirrors the catalog_items table.  It represents one
// lendable title.  Kind-specific columns are nullable in the schema
// and are only meaningful for the matching kind.
//
// Fields:
//  ID              – primary key identifier.
//  Title, Author   – bibliographic data, opaque to the lending engine.
//  ISBN            – optional unique identifier.
//  Kind            – PHYSICAL, DIGITAL_FREE or DIGITAL_LICENSED.
//  Status          – AVAILABLE, OUT_OF_STOCK or DISABLED.
//  TotalCopies     – physical only: copies owned by the library.
//  AvailableCopies – physical only: copies currently on the shelf;
//                    invariant 0 ≤ AvailableCopies ≤ TotalCopies.
//  UnitPriceCents  – licensed only: rental price per period, in cents.
//  PeriodDays      – licensed only: length of one rental period.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type CatalogItem struct {
    ID              uint64     // catalog_items.id
    Title           string     // catalog_items.title
    Author          string     // catalog_items.author
    ISBN            *string    // catalog_items.isbn (nullable)
    Kind            ItemKind   // catalog_items.kind
    Status          ItemStatus // catalog_items.status
    TotalCopies     uint32     // catalog_items.total_copies (physical)
    AvailableCopies uint32     // catalog_items.available_copies (physical)
    UnitPriceCents  uint32     // catalog_items.unit_price_cents (licensed)
    PeriodDays      uint32     // catalog_items.period_days (licensed)
    CreatedAt       time.Time  // catalog_items.created_at
    UpdatedAt       time.Time  // catalog_items.updated_at
}

// Borrowable reports whether the item can currently enter a borrow
// transaction; the final arbitration still happens in the allocator's
// guarded decrement so two racing borrowers cannot both win the last copy.
func (i *CatalogItem) Borrowable() bool {
    return i.Kind == KindPhysical && i.Status == StatusAvailable && i.AvailableCopies > 0
}

// Rentable reports whether the item can enter a rental order.  A
// licensed item without a configured price or period is not rentable
// even when AVAILABLE.
func (i *CatalogItem) Rentable() bool {
    return i.Kind == KindDigitalLicensed && i.Status == StatusAvailable &&
        i.UnitPriceCents > 0 && i.PeriodDays > 0
}
