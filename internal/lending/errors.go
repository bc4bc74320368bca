// Package lending implements the lending/rental lifecycle engine: how
// a catalog item moves between available, borrowed/rented and
// returned/expired, and how physical copies and time-bounded digital
// licenses are allocated, tracked and reclaimed without ever
// over-allocating.
package lending

import "errors"

// ErrCode is a stable, user-visible error code.  Handlers map codes to
// HTTP statuses; the codes themselves never change wording so clients
// can switch on them.
type ErrCode string

const (
    CodeItemNotFound        ErrCode = "ITEM_NOT_FOUND"
    CodeRecordNotFound      ErrCode = "RECORD_NOT_FOUND"
    CodeOrderNotFound       ErrCode = "ORDER_NOT_FOUND"
    CodeItemNotPhysical     ErrCode = "ITEM_NOT_PHYSICAL"
    CodeItemNotBorrowable   ErrCode = "ITEM_NOT_BORROWABLE"
    CodeOutOfStock          ErrCode = "OUT_OF_STOCK"
    CodeBorrowLimitExceeded ErrCode = "BORROW_LIMIT_EXCEEDED"
    CodeAlreadyBorrowed     ErrCode = "ALREADY_BORROWED"
    CodeAlreadyReturned     ErrCode = "ALREADY_RETURNED"
    CodeItemNotRentable     ErrCode = "ITEM_NOT_RENTABLE"
    CodeItemNotAvailable    ErrCode = "ITEM_NOT_AVAILABLE"
    CodeRentalConfigMissing ErrCode = "RENTAL_CONFIG_MISSING"
    CodeNotCancellable      ErrCode = "NOT_CANCELLABLE"
    CodeNotRental           ErrCode = "NOT_RENTAL"
    CodeUnauthorized        ErrCode = "UNAUTHORIZED"
    CodeInvalidDuration     ErrCode = "INVALID_DURATION"
    CodeInvalidPeriods      ErrCode = "INVALID_PERIODS"
)

type codedError struct{ code ErrCode }

func (e *codedError) Error() string { return string(e.code) }
func (e *codedError) Code() ErrCode { return e.code }

func coded(c ErrCode) error { return &codedError{code: c} }

// Code extracts the ErrCode from an engine error.  It returns the
// empty string for errors that did not originate here (driver errors,
// context cancellation and the like) so handlers can fall through to a
// generic 500.
func Code(err error) ErrCode {
    var ce interface{ Code() ErrCode }
    if errors.As(err, &ce) {
        return ce.Code()
    }
    return ""
}

// Sentinel errors for every precondition the engine enforces.  They
// are singletons so errors.Is works alongside Code.
var (
    ErrItemNotFound        = coded(CodeItemNotFound)
    ErrRecordNotFound      = coded(CodeRecordNotFound)
    ErrOrderNotFound       = coded(CodeOrderNotFound)
    ErrItemNotPhysical     = coded(CodeItemNotPhysical)
    ErrItemNotBorrowable   = coded(CodeItemNotBorrowable)
    ErrOutOfStock          = coded(CodeOutOfStock)
    ErrBorrowLimitExceeded = coded(CodeBorrowLimitExceeded)
    ErrAlreadyBorrowed     = coded(CodeAlreadyBorrowed)
    ErrAlreadyReturned     = coded(CodeAlreadyReturned)
    ErrItemNotRentable     = coded(CodeItemNotRentable)
    ErrItemNotAvailable    = coded(CodeItemNotAvailable)
    ErrRentalConfigMissing = coded(CodeRentalConfigMissing)
    ErrNotCancellable      = coded(CodeNotCancellable)
    ErrNotRental           = coded(CodeNotRental)
    ErrUnauthorized        = coded(CodeUnauthorized)
    ErrInvalidDuration     = coded(CodeInvalidDuration)
    ErrInvalidPeriods      = coded(CodeInvalidPeriods)
)
