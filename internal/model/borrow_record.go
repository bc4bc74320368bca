package model

import "time"

// BorrowState enumerates the lifecycle states of a physical borrow.
// ACTIVE records become OVERDUE via the sweeper once the due date has
// passed; returning flips them to RETURNED or RETURNED_LATE depending
// on whether the return happened in time.
type BorrowState string

const (
    BorrowActive       BorrowState = "ACTIVE"
    BorrowOverdue      BorrowState = "OVERDUE"
    BorrowReturned     BorrowState = "RETURNED"
    BorrowReturnedLate BorrowState = "RETURNED_LATE"
)

// Open reports whether the record still holds a physical copy, i.e.
// the copy has not been returned yet.
func (s BorrowState) Open() bool { return s == BorrowActive || s == BorrowOverdue }

// BorrowRecord mirrors the borrow_records table.  One record is one
// physical-item lending transaction: it is created when a copy leaves
// the shelf and closed when the copy comes back.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – user who borrowed the copy.
//  ItemID     – catalog item the copy belongs to.
//  BorrowedAt – when the copy was handed out.
//  DueAt      – deadline for returning the copy.
//  ReturnedAt – when the copy came back; nil while the borrow is open.
//  State      – ACTIVE, OVERDUE, RETURNED or RETURNED_LATE.
type BorrowRecord struct {
    ID         uint64      // borrow_records.id
    UserID     uint64      // borrow_records.user_id
    ItemID     uint64      // borrow_records.item_id
    BorrowedAt time.Time   // borrow_records.borrowed_at
    DueAt      time.Time   // borrow_records.due_at
    ReturnedAt *time.Time  // borrow_records.returned_at (nullable)
    State      BorrowState // borrow_records.state
}
