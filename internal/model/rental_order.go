package model

import "time"

// OrderType distinguishes rentals from outright purchases in the
// orders table.  Only RENT orders are managed by the rental lifecycle;
// PURCHASE exists so admin force-return can reject the wrong kind.
type OrderType string

const (
    OrderRent     OrderType = "RENT"
    OrderPurchase OrderType = "PURCHASE"
)

// RentalState enumerates the lifecycle states of a digital rental
// order.  Orders are created ACTIVE because payment is settled
// synchronously before the order is persisted; PENDING and CANCELLED
// exist for a payment-deferred flow that is not currently wired up.
type RentalState string

const (
    RentalPending   RentalState = "PENDING"
    RentalActive    RentalState = "ACTIVE"
    RentalCancelled RentalState = "CANCELLED"
    RentalExpired   RentalState = "EXPIRED"
    RentalReturned  RentalState = "RETURNED"
)

// RentalOrder mirrors the rental_orders table.  One order grants a
// user time-bounded access to a digital licensed item.  There is no
// inventory constraint: any number of users may rent the same item
// concurrently.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – user who rented the item.
//  ItemID          – catalog item being rented.
//  OrderType       – RENT (PURCHASE reserved for the buy flow).
//  Periods         – number of rental periods purchased (1–12).
//  StartedAt       – when access began.
//  ExpiresAt       – StartedAt + Periods × item.PeriodDays.
//  TotalPriceCents – Periods × item.UnitPriceCents at order time.
//  State           – PENDING, ACTIVE, CANCELLED, EXPIRED or RETURNED.
type RentalOrder struct {
    ID              uint64      // rental_orders.id
    UserID          uint64      // rental_orders.user_id
    ItemID          uint64      // rental_orders.item_id
    OrderType       OrderType   // rental_orders.order_type
    Periods         uint32      // rental_orders.periods
    StartedAt       time.Time   // rental_orders.started_at
    ExpiresAt       time.Time   // rental_orders.expires_at
    TotalPriceCents uint32      // rental_orders.total_price_cents
    State           RentalState // rental_orders.state
}

// Expired reports whether the order's access window has closed at the
// given instant, regardless of whether the sweeper has flipped the
// state yet.
func (o *RentalOrder) Expired(now time.Time) bool { return now.After(o.ExpiresAt) }
