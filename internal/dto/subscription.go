package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/subscription"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// SubscriptionStatusDTO reports a user's subscription
type SubscriptionStatusDTO struct {
	IsSubscribed        bool       `json:"is_subscribed"`
	SubscriptionEndDate *time.Time `json:"subscription_end_date"`
	Status              string     `json:"status"`
}

// PlanDTO describes a purchasable plan
type PlanDTO struct {
	Name         string          `json:"name"`
	DurationDays int             `json:"duration_days"`
	Price        decimal.Decimal `json:"price"`
}

// PaymentDTO is one entry in a user's payment history
type PaymentDTO struct {
	ID        uint64               `json:"id"`
	Plan      string               `json:"plan"`
	Amount    decimal.Decimal      `json:"amount"`
	Status    models.PaymentStatus `json:"status"`
	Reference string               `json:"reference"`
	CreatedAt time.Time            `json:"created_at"`
}

// PaymentListResponse represents a paginated payment history
type PaymentListResponse struct {
	Payments   []PaymentDTO             `json:"payments"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToSubscriptionStatusDTO converts a derived subscription status
func ToSubscriptionStatusDTO(s subscription.Status) SubscriptionStatusDTO {
	return SubscriptionStatusDTO{
		IsSubscribed:        s.IsSubscribed,
		SubscriptionEndDate: s.EndsAt,
		Status:              string(s.State),
	}
}

// ToPlanDTOs converts the plan catalogue
func ToPlanDTOs(plans []subscription.Plan) []PlanDTO {
	out := make([]PlanDTO, len(plans))
	for i, p := range plans {
		out[i] = PlanDTO{Name: p.Name, DurationDays: p.DurationDays, Price: p.Price}
	}
	return out
}

// ToPaymentListResponse converts a page of payments
func ToPaymentListResponse(payments []models.SubscriptionPayment, pagination utils.PaginationResponse) PaymentListResponse {
	items := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		items[i] = PaymentDTO{
			ID:        p.ID,
			Plan:      p.Plan,
			Amount:    p.Amount,
			Status:    p.Status,
			Reference: p.Reference,
			CreatedAt: p.CreatedAt,
		}
	}
	return PaymentListResponse{Payments: items, Pagination: pagination}
}
