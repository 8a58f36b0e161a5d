package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/payments"
	"github.com/yukikurage/project-tracker-api/internal/policy"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/subscription"
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"go.uber.org/zap"
)

var (
	ErrPaymentRequired    = errors.New("payment failed, please try again")
	ErrPaymentUnavailable = errors.New("payment provider unavailable")
)

// SubscriptionService drives the subscription state machine for users.
type SubscriptionService struct {
	users    repository.UserRepository
	payments repository.PaymentRepository
	machine  *subscription.Machine
	provider payments.Provider
	logger   *zap.Logger
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(
	users repository.UserRepository,
	paymentRepo repository.PaymentRepository,
	machine *subscription.Machine,
	provider payments.Provider,
	logger *zap.Logger,
) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{
		users:    users,
		payments: paymentRepo,
		machine:  machine,
		provider: provider,
		logger:   logger,
	}
}

// Plans lists the available plans.
func (s *SubscriptionService) Plans() []subscription.Plan {
	return s.machine.Catalog().List()
}

// Status reports the actor's subscription.
func (s *SubscriptionService) Status(actor *models.User) (subscription.Status, error) {
	if err := s.authorize(actor, policy.ActionRead); err != nil {
		return subscription.Status{}, err
	}
	return s.machine.Status(actor), nil
}

// Subscribe charges the actor for planName and activates the subscription
// when the charge succeeds. A declined charge leaves the user untouched and
// returns ErrPaymentRequired. Every charge that reaches the provider is
// recorded.
func (s *SubscriptionService) Subscribe(ctx context.Context, actor *models.User, planName string) (subscription.Status, error) {
	if err := s.authorize(actor, policy.ActionSubscribe); err != nil {
		return subscription.Status{}, err
	}

	plan, err := s.machine.PrepareSubscribe(actor, planName)
	if err != nil {
		return subscription.Status{}, err
	}

	receipt, chargeErr := s.provider.Charge(ctx, payments.Charge{
		UserID: actor.ID,
		Plan:   plan.Name,
		Amount: plan.Price,
	})
	if chargeErr != nil && !errors.Is(chargeErr, payments.ErrDeclined) {
		s.logger.Error("payment provider failed", zap.Uint64("user_id", actor.ID), zap.Error(chargeErr))
		return subscription.Status{}, fmt.Errorf("%w: %v", ErrPaymentUnavailable, chargeErr)
	}

	record := &models.SubscriptionPayment{
		UserID:    actor.ID,
		Plan:      plan.Name,
		Amount:    plan.Price,
		Status:    models.PaymentStatusAccepted,
		Reference: receipt.Reference,
	}
	if !receipt.Approved {
		record.Status = models.PaymentStatusDeclined
	}
	if err := s.payments.Create(ctx, record); err != nil {
		return subscription.Status{}, fmt.Errorf("failed to record payment: %w", err)
	}

	if !receipt.Approved {
		s.logger.Warn("subscription payment declined",
			zap.Uint64("user_id", actor.ID),
			zap.String("plan", plan.Name),
			zap.String("reference", receipt.Reference),
		)
		return subscription.Status{}, ErrPaymentRequired
	}

	updated := *actor
	s.machine.Activate(&updated, plan)
	if err := s.users.UpdateSubscription(ctx, &updated); err != nil {
		return subscription.Status{}, fmt.Errorf("failed to activate subscription: %w", err)
	}
	*actor = updated

	s.logger.Info("subscription activated",
		zap.Uint64("user_id", actor.ID),
		zap.String("plan", plan.Name),
		zap.Timep("ends_at", actor.SubscriptionEndsAt),
	)
	return s.machine.Status(actor), nil
}

// Unsubscribe ends the actor's subscription immediately.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, actor *models.User) (subscription.Status, error) {
	if err := s.authorize(actor, policy.ActionUnsubscribe); err != nil {
		return subscription.Status{}, err
	}

	updated := *actor
	if err := s.machine.Unsubscribe(&updated); err != nil {
		return subscription.Status{}, err
	}
	if err := s.users.UpdateSubscription(ctx, &updated); err != nil {
		return subscription.Status{}, fmt.Errorf("failed to cancel subscription: %w", err)
	}
	*actor = updated

	s.logger.Info("subscription cancelled", zap.Uint64("user_id", actor.ID))
	return s.machine.Status(actor), nil
}

// Payments returns the actor's payment history, newest first.
func (s *SubscriptionService) Payments(ctx context.Context, actor *models.User, params utils.PaginationParams) ([]models.SubscriptionPayment, int64, error) {
	if err := s.authorize(actor, policy.ActionList); err != nil {
		return nil, 0, err
	}

	history, total, err := s.payments.ListByUser(ctx, actor.ID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return history, total, nil
}

func (s *SubscriptionService) authorize(actor *models.User, action policy.Action) error {
	return policy.Authorize(policy.ResourceSubscription, action, policy.Facts{Actor: actor, Now: s.machine.Now()})
}
