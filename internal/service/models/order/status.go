package order

import (
	"database/sql/driver"

	"github.com/ordermanager/oms/internal/errs"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusPaid       Status = "Paid"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
	StatusRejected   Status = "Rejected"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// ParseStatus converts a loose string into a Status. Parsing happens
// once at the boundary; the core only sees typed values.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusPaid, StatusProcessing, StatusShipped,
		StatusCompleted, StatusCancelled, StatusRejected:
		return Status(s), nil
	default:
		return "", errs.InvalidArgumentf("unknown order status %q", s)
	}
}

// PaymentStatus tracks payment independently of the order status.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "Pending"
	PaymentAuthorized PaymentStatus = "Authorized"
	PaymentPaid       PaymentStatus = "Paid"
	PaymentRefused    PaymentStatus = "Refused"
	PaymentRefunded   PaymentStatus = "Refunded"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return s.String(), nil
}

// ParsePaymentStatus converts a loose string into a PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentAuthorized, PaymentPaid, PaymentRefused, PaymentRefunded:
		return PaymentStatus(s), nil
	default:
		return "", errs.InvalidArgumentf("unknown payment status %q", s)
	}
}

// FreightType is the shipping modality returned by the freight quote.
type FreightType string

const (
	FreightPAC     FreightType = "PAC"
	FreightExpress FreightType = "Express"
)

func (t FreightType) String() string {
	return string(t)
}

func (t FreightType) Value() (driver.Value, error) {
	return t.String(), nil
}

// ParseFreightType converts a loose string into a FreightType.
func ParseFreightType(s string) (FreightType, error) {
	switch FreightType(s) {
	case FreightPAC, FreightExpress:
		return FreightType(s), nil
	default:
		return "", errs.InvalidArgumentf("unknown freight type %q", s)
	}
}
