package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/policy"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/subscription"
	"go.uber.org/zap"
)

// respondError maps service and policy errors onto HTTP responses.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, policy.ErrForbidden),
		errors.Is(err, services.ErrInvalidSuperuserSecret),
		errors.Is(err, services.ErrSuperuserProtected):
		apierrors.Forbidden(c, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)

	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())

	case errors.Is(err, services.ErrUserConflict),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())

	case errors.Is(err, services.ErrPaymentRequired):
		apierrors.PaymentRequired(c, err.Error())

	case errors.Is(err, services.ErrPaymentUnavailable):
		apierrors.ServiceUnavailable(c, "Payment provider unavailable, please try again later")

	case errors.Is(err, services.ErrRevocationUnavailable):
		apierrors.ServiceUnavailable(c, "Could not revoke token, please try again later")

	case errors.Is(err, services.ErrInvalidUsername),
		errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrSuperuserExists),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrAlreadyParticipant),
		errors.Is(err, subscription.ErrAlreadyActive),
		errors.Is(err, subscription.ErrUnknownPlan),
		errors.Is(err, subscription.ErrNotSubscribed):
		apierrors.BadRequest(c, err.Error())

	default:
		logger.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		apierrors.InternalError(c, "")
	}
}

// bindJSON decodes the request body into req, answering 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
			apierrors.BadRequestWithDetails(c, "Validation failed", details)
			return false
		}
		apierrors.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}

// currentUser returns the user resolved by the auth middleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return nil, false
	}
	return user, true
}
