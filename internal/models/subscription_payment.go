package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusAccepted PaymentStatus = "accepted"
	PaymentStatusDeclined PaymentStatus = "declined"
)

// SubscriptionPayment records one attempt to pay for a subscription plan.
type SubscriptionPayment struct {
	ID        uint64          `gorm:"primarykey" json:"id"`
	UserID    uint64          `gorm:"not null;index" json:"user_id"`
	Plan      string          `gorm:"type:varchar(20);not null" json:"plan"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status    PaymentStatus   `gorm:"type:varchar(20);not null" json:"status"`
	Reference string          `gorm:"type:varchar(64)" json:"reference"`
	CreatedAt time.Time       `json:"created_at"`
}
