package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	mw "github.com/fatflowers/washplan/internal/app/api/middleware"
	subsvc "github.com/fatflowers/washplan/internal/app/service/subscription"
	models "github.com/fatflowers/washplan/internal/models"
	"github.com/fatflowers/washplan/pkg/response"
	"github.com/fatflowers/washplan/pkg/types"
)

type ResolveCancellationRequest struct {
	UserID  string `json:"user_id"`
	Approve bool   `json:"approve"`
}

// @Summary      Resolve Cancellation (Admin)
// @Description  Approves or rejects a tenant's open cancellation request.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ResolveCancellationRequest true "Resolve cancellation request"
// @Success      200  {object}  response.APIResponse[models.Subscription]
// @Router       /api/v1/admin/resolve-cancellation [post]
func ApiResolveCancellation(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResolveCancellationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.UserID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id"))
			return
		}
		rec, err := svc.ResolveCancellation(c.Request.Context(), req.UserID, mw.CallerID(c), req.Approve)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rec))
	}
}

type ApproveRenewalRequest struct {
	UserID string `json:"user_id"`
}

// @Summary      Approve Renewal (Admin)
// @Description  Extends the billing period by one month from the previous period end.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ApproveRenewalRequest true "Approve renewal request"
// @Success      200  {object}  response.APIResponse[models.Subscription]
// @Router       /api/v1/admin/approve-renewal [post]
func ApiApproveRenewal(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ApproveRenewalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.UserID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id"))
			return
		}
		rec, err := svc.ApproveRenewal(c.Request.Context(), req.UserID, mw.CallerID(c))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rec))
	}
}

type ApprovePendingSubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id"`
	Approve        bool   `json:"approve"`
}

// @Summary      Approve Pending Subscription (Admin)
// @Description  Signs off or rejects an initial paid-plan purchase.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ApprovePendingSubscriptionRequest true "Approve pending subscription request"
// @Success      200  {object}  response.APIResponse[models.Subscription]
// @Router       /api/v1/admin/approve-pending-subscription [post]
func ApiApprovePendingSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ApprovePendingSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.SubscriptionID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing subscription_id"))
			return
		}
		rec, err := svc.ApprovePendingSubscription(c.Request.Context(), req.SubscriptionID, mw.CallerID(c), req.Approve)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rec))
	}
}

type ListSubscriptionsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type SubscriptionItem struct {
	ID                    string                   `json:"id"`
	UserID                string                   `json:"user_id"`
	PlanType              types.PlanType           `json:"plan_type"`
	Status                types.SubscriptionStatus `json:"status"`
	CurrentPeriodStart    *time.Time               `json:"current_period_start"`
	CurrentPeriodEnd      *time.Time               `json:"current_period_end"`
	TrialEndsAt           *time.Time               `json:"trial_ends_at"`
	CanceledAt            *time.Time               `json:"canceled_at"`
	CancellationRequested bool                     `json:"cancellation_requested"`
	PendingRenewal        bool                     `json:"pending_renewal"`
	StripeCustomerID      *string                  `json:"stripe_customer_id"`
	CreatedAt             time.Time                `json:"created_at"`
	UpdatedAt             time.Time                `json:"updated_at"`
}

func toSubscriptionItem(m *models.Subscription) *SubscriptionItem {
	return &SubscriptionItem{
		ID:                    m.ID,
		UserID:                m.UserID,
		PlanType:              m.PlanType,
		Status:                m.Status,
		CurrentPeriodStart:    m.CurrentPeriodStart,
		CurrentPeriodEnd:      m.CurrentPeriodEnd,
		TrialEndsAt:           m.TrialEndsAt,
		CanceledAt:            m.CanceledAt,
		CancellationRequested: m.CancellationRequested,
		PendingRenewal:        m.PendingRenewal,
		StripeCustomerID:      m.StripeCustomerID,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

type ListSubscriptionsResponse struct {
	Items []*SubscriptionItem `json:"items"`
	Total int64               `json:"total"`
}

// @Summary      List Subscriptions (Admin)
// @Description  Retrieves a paginated and filterable list of all subscriptions.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ListSubscriptionsRequest true "List request with filters, pagination, and sorting"
// @Success      200  {object}  response.APIResponse[ListSubscriptionsResponse]
// @Router       /api/v1/admin/list-subscriptions [post]
func ApiListSubscriptions(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListSubscriptionsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		scanReq := &subsvc.ScanRequest{Filters: req.Filters, From: req.From, Size: req.Size, SortBy: req.SortBy, SortOrder: req.SortOrder}
		res, err := svc.ListSubscriptions(c.Request.Context(), scanReq)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		items := lo.Map(res.Items, func(it *models.Subscription, _ int) *SubscriptionItem { return toSubscriptionItem(it) })
		c.JSON(http.StatusOK, response.OKT(&ListSubscriptionsResponse{Items: items, Total: res.Total}))
	}
}

func RegisterAdminRoutes(r gin.IRouter, svc *subsvc.Service) {
	r.POST("/resolve-cancellation", ApiResolveCancellation(svc))
	r.POST("/approve-renewal", ApiApproveRenewal(svc))
	r.POST("/approve-pending-subscription", ApiApprovePendingSubscription(svc))
	r.POST("/list-subscriptions", ApiListSubscriptions(svc))
}
