package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"careerkit/internal/models/request_models"
	"careerkit/internal/models/response_models"
	"careerkit/internal/services"
	"careerkit/pkg/middleware"
	"careerkit/pkg/utils"
)

type BillingController struct {
	billingService services.IBillingService
	webhookService services.IWebhookService
}

func NewBillingController(billingService services.IBillingService, webhookService services.IWebhookService) *BillingController {
	return &BillingController{
		billingService: billingService,
		webhookService: webhookService,
	}
}

// CreateCheckout godoc
// @Summary Create a checkout session for a paid plan
// @Description Returns a hosted checkout URL for the requested plan
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body request_models.CreateCheckoutRequest true "Checkout request"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /billing/checkout [post]
func (b *BillingController) CreateCheckout(c *gin.Context) {
	var request request_models.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	checkout, err := b.billingService.CreateCheckout(c.Request.Context(), principal, request.PlanCode)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, checkout, "Checkout session created successfully")
}

// CreatePortalSession godoc
// @Summary Open the billing portal
// @Description Returns a hosted portal URL where the user manages their payment details
// @Tags Billing
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /billing/portal [post]
func (b *BillingController) CreatePortalSession(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	portalURL, err := b.billingService.CreatePortalSession(c.Request.Context(), principal)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.PortalSessionResponse{PortalURL: portalURL}, "Portal session created successfully")
}

// CancelSubscription godoc
// @Summary Cancel the active subscription at period end
// @Description Schedules cancellation with the payment provider; access continues until the paid period ends
// @Tags Billing
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /billing/cancel [post]
func (b *BillingController) CancelSubscription(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := b.billingService.CancelSubscription(c.Request.Context(), principal); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Subscription will be canceled at the end of the current period")
}

// ListInvoices godoc
// @Summary List the caller's invoices
// @Description Returns past invoices from the payment provider, empty for never-paid users
// @Tags Billing
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /billing/invoices [get]
func (b *BillingController) ListInvoices(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	invoices, err := b.billingService.ListInvoices(c.Request.Context(), principal)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, invoices, "Invoices retrieved successfully")
}

// HandleWebhook receives payment provider events. Unauthenticated by
// bearer token; authenticity comes from the signature check inside.
func (b *BillingController) HandleWebhook(c *gin.Context) {
	b.webhookService.HandleWebhook(c)
}
