package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"careerkit/internal/models/response_models"
	"careerkit/pkg/middleware"
	"careerkit/pkg/utils"
)

type AuthController struct{}

func NewAuthController() *AuthController {
	return &AuthController{}
}

// GetProfile godoc
// @Summary Get the authenticated user's profile
// @Description Returns the identity of the caller as verified against the identity provider
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (a *AuthController) GetProfile(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	profile := response_models.ProfileResponse{
		ID:    principal.ID,
		Email: principal.Email,
	}
	if name, ok := principal.Metadata["full_name"].(string); ok {
		profile.FullName = name
	}
	if avatar, ok := principal.Metadata["avatar_url"].(string); ok {
		profile.AvatarURL = avatar
	}

	utils.RespondSuccess(c, profile, "Profile retrieved successfully")
}
