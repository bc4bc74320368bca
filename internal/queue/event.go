// Package queue defines message payloads exchanged over the message broker.
package queue

// Event names carried in LendingEvent.Kind.
const (
    EventBorrowConfirmed = "borrow.confirmed"
    EventRentalCreated   = "rental.created"
)

// LendingEvent is published whenever the engine completes a borrow or
// a rental.  It contains enough information for downstream consumers
// (notifications, analytics, audit) to act without querying the
// primary database.  Deadline carries the borrow due date or the
// rental expiry, depending on Kind.
type LendingEvent struct {
    EventID         string `json:"event_id"`
    Kind            string `json:"kind"`
    RecordID        uint64 `json:"record_id"`
    UserID          uint64 `json:"user_id"`
    ItemID          uint64 `json:"item_id"`
    ItemTitle       string `json:"item_title"`
    OccurredAt      string `json:"occurred_at"`
    Deadline        string `json:"deadline"`
    TotalPriceCents uint32 `json:"total_price_cents,omitempty"`
}
