package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"careerkit/internal/services"
	"careerkit/pkg/middleware"
	"careerkit/pkg/utils"
)

type SubscriptionController struct {
	subscriptionService services.ISubscriptionService
}

func NewSubscriptionController(subscriptionService services.ISubscriptionService) *SubscriptionController {
	return &SubscriptionController{subscriptionService: subscriptionService}
}

// GetStatus godoc
// @Summary Get the caller's subscription status
// @Description Returns plan, billing period and per-feature usage for the current period
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscriptions/status [get]
func (s *SubscriptionController) GetStatus(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	status, err := s.subscriptionService.GetStatus(c.Request.Context(), principal)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, status, "Subscription status retrieved successfully")
}
