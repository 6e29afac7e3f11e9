package models

import "time"

type PaymentStatus string

const (
	PaymentCreated   PaymentStatus = "created"
	PaymentAttempted PaymentStatus = "attempted"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentRecord tracks one gateway order for an application. The gateway
// order id is the primary lookup key for callbacks, so it is persisted
// before the create-order response is returned to the client.
type PaymentRecord struct {
	ID            string `gorm:"type:char(36);primaryKey" json:"id"`
	ApplicationID string `gorm:"type:char(36);not null;index" json:"application_id"`
	UserID        string `gorm:"type:char(36);not null;index" json:"user_id"`

	OrderID          string `gorm:"type:varchar(100);uniqueIndex;not null" json:"order_id"`
	GatewayPaymentID string `gorm:"type:varchar(100)" json:"gateway_payment_id"`
	Receipt          string `gorm:"type:varchar(100)" json:"receipt"`

	// Amount is in minor units (paise for INR).
	Amount   int64         `gorm:"not null" json:"amount"`
	Currency string        `gorm:"type:varchar(10);default:'INR'" json:"currency"`
	Status   PaymentStatus `gorm:"type:varchar(20);default:'created';index" json:"status"`

	// Normalized method metadata only, never raw card numbers.
	Method        string `gorm:"type:varchar(50)" json:"method"`
	MethodDetails string `gorm:"type:varchar(255)" json:"method_details"`

	PaidAt *time.Time `json:"paid_at,omitempty"`

	RefundAmount *int64     `json:"refund_amount,omitempty"`
	RefundReason string     `gorm:"type:varchar(255)" json:"refund_reason,omitempty"`
	RefundedAt   *time.Time `json:"refunded_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
