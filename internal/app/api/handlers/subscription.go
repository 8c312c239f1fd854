package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/fatflowers/washplan/internal/app/api/middleware"
	subsvc "github.com/fatflowers/washplan/internal/app/service/subscription"
	models "github.com/fatflowers/washplan/internal/models"
	"github.com/fatflowers/washplan/pkg/response"
	"github.com/fatflowers/washplan/pkg/types"
)

func errToCode(err error) response.APIResponseCode {
	switch {
	case errors.Is(err, subsvc.ErrNotFound):
		return response.APIResponseCodeNotFound
	case errors.Is(err, subsvc.ErrAlreadyExists):
		return response.APIResponseCodeAlreadyExists
	case errors.Is(err, subsvc.ErrAlreadyRequested):
		return response.APIResponseCodeAlreadyRequested
	case errors.Is(err, subsvc.ErrNoPendingRequest):
		return response.APIResponseCodeNoPendingRequest
	case errors.Is(err, subsvc.ErrNotPendingRenewal):
		return response.APIResponseCodeNotPendingRenewal
	case errors.Is(err, subsvc.ErrInvalidState):
		return response.APIResponseCodeInvalidState
	default:
		return response.APIResponseCodeError
	}
}

// respondServiceError maps guard failures to their envelope codes. Store and
// network failures get the generic retry message; raw error text never
// reaches tenants.
func respondServiceError(c *gin.Context, err error) {
	code := errToCode(err)
	if code == response.APIResponseCodeError {
		c.JSON(http.StatusOK, response.ErrorT[any](code, nil))
		return
	}
	c.JSON(http.StatusOK, response.ErrorT[any](code, err.Error()))
}

type SubscriptionStatusResponse struct {
	Subscription        *models.Subscription `json:"subscription"`
	IsExpired           bool                 `json:"is_expired"`
	IsPendingRenewalDue bool                 `json:"is_pending_renewal_due"`
	Limits              *types.PlanLimits    `json:"limits"`
}

// @Summary      Subscription Status
// @Description  Returns the caller's subscription with derived expiry/renewal flags and plan limits.
// @Tags         Subscription
// @Produce      json
// @Success      200  {object}  response.APIResponse[SubscriptionStatusResponse]
// @Router       /api/v1/subscription/status [get]
func ApiSubscriptionStatus(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := mw.CallerID(c)
		eff, err := svc.GetEffectiveSubscription(c.Request.Context(), userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		if eff == nil {
			c.JSON(http.StatusOK, response.OKT(&SubscriptionStatusResponse{}))
			return
		}

		// The polling read path doubles as the renewal-due trigger. A
		// concurrent poll losing the race just gets ErrInvalidState here,
		// which is not an error for the reader.
		if eff.IsPendingRenewalDue {
			if rec, err := svc.MarkRenewalDue(c.Request.Context(), userID); err == nil {
				eff.Record = rec
			}
		}

		c.JSON(http.StatusOK, response.OKT(&SubscriptionStatusResponse{
			Subscription:        eff.Record,
			IsExpired:           eff.IsExpired,
			IsPendingRenewalDue: eff.IsPendingRenewalDue,
			Limits:              types.LimitsFor(eff.Record.PlanType),
		}))
	}
}

// @Summary      Start Trial
// @Description  Creates the caller's trial subscription.
// @Tags         Subscription
// @Produce      json
// @Success      200  {object}  response.APIResponse[models.Subscription]
// @Router       /api/v1/subscription/start-trial [post]
func ApiStartTrial(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := svc.CreateTrial(c.Request.Context(), mw.CallerID(c))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rec))
	}
}

// @Summary      Request Cancellation
// @Description  Opens a cancellation request on the caller's active subscription.
// @Tags         Subscription
// @Produce      json
// @Success      200  {object}  response.APIResponse[models.Subscription]
// @Router       /api/v1/subscription/request-cancellation [post]
func ApiRequestCancellation(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := mw.CallerID(c)
		rec, err := svc.RequestCancellation(c.Request.Context(), userID, userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rec))
	}
}

type CheckoutRequest struct {
	PlanType types.PlanType `json:"plan_type"`
	Email    string         `json:"email"`
}

// @Summary      Checkout
// @Description  Provisions billing for a paid plan; the subscription awaits super-admin approval.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body CheckoutRequest true "Checkout request"
// @Success      200  {object}  response.APIResponse[models.Subscription]
// @Router       /api/v1/subscription/checkout [post]
func ApiCheckout(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.PlanType == "" || req.Email == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing plan_type or email"))
			return
		}
		rec, err := svc.Checkout(c.Request.Context(), mw.CallerID(c), req.Email, req.PlanType)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rec))
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, svc *subsvc.Service) {
	r.GET("/subscription/status", ApiSubscriptionStatus(svc))
	r.POST("/subscription/start-trial", ApiStartTrial(svc))
	r.POST("/subscription/request-cancellation", ApiRequestCancellation(svc))
	r.POST("/subscription/checkout", ApiCheckout(svc))
}
