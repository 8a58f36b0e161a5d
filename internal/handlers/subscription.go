package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"go.uber.org/zap"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
	logger              *zap.Logger
}

func NewSubscriptionHandler(subscriptionService *services.SubscriptionService, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService, logger: logger}
}

// Subscribe pays for a plan and activates the subscription
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Plan string `json:"plan" binding:"required,plan"`
	}
	if !bindJSON(c, &req) {
		return
	}

	status, err := h.subscriptionService.Subscribe(c.Request.Context(), actor, req.Plan)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubscriptionStatusDTO(status))
}

// Unsubscribe cancels the current subscription
func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	status, err := h.subscriptionService.Unsubscribe(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubscriptionStatusDTO(status))
}

// GetStatus reports whether the subscription is active, expired or absent
func (h *SubscriptionHandler) GetStatus(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	status, err := h.subscriptionService.Status(actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubscriptionStatusDTO(status))
}

// ListPlans returns the plan catalogue
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": dto.ToPlanDTOs(h.subscriptionService.Plans())})
}

// ListPayments returns the current user's payment history
func (h *SubscriptionHandler) ListPayments(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	history, total, err := h.subscriptionService.Payments(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPaymentListResponse(history, params.Response(total)))
}
