package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"careerkit/internal/models/db_models"
	"careerkit/internal/models/request_models"
	"careerkit/internal/services"
	"careerkit/pkg/middleware"
	"careerkit/pkg/utils"
)

type ListingController struct {
	listingService services.IListingService
	quotaService   services.IQuotaService
}

func NewListingController(listingService services.IListingService, quotaService services.IQuotaService) *ListingController {
	return &ListingController{
		listingService: listingService,
		quotaService:   quotaService,
	}
}

// SaveListing godoc
// @Summary Save a job listing
// @Description Stores the listing with an embedding of its description for later matching
// @Tags Listings
// @Accept json
// @Produce json
// @Param request body request_models.SaveListingRequest true "Listing"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /listings [post]
func (l *ListingController) SaveListing(c *gin.Context) {
	var request request_models.SaveListingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	userID, err := uuid.Parse(principal.ID)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid user identity")
		return
	}

	listing, err := l.listingService.SaveListing(c.Request.Context(), userID, request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, listing, "Listing saved successfully")
}

// ListListings godoc
// @Summary List saved job listings
// @Tags Listings
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /listings [get]
func (l *ListingController) ListListings(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	userID, err := uuid.Parse(principal.ID)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid user identity")
		return
	}

	listings, err := l.listingService.ListListings(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, listings, "Listings retrieved successfully")
}

// MatchListings godoc
// @Summary Match a resume against saved listings
// @Description Similarity search over saved listings, metered under the job_match feature quota
// @Tags Listings
// @Accept json
// @Produce json
// @Param request body request_models.MatchListingsRequest true "Match request"
// @Success 200 {object} utils.APIResponse
// @Failure 429 {object} utils.QuotaExceededResponse
// @Security BearerAuth
// @Router /listings/match [post]
func (l *ListingController) MatchListings(c *gin.Context) {
	var request request_models.MatchListingsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	userID, err := uuid.Parse(principal.ID)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid user identity")
		return
	}

	response, statusCode, err := l.quotaService.AuthorizeAndGate(c.Request.Context(), principal, db_models.FeatureJobMatch, 1, func() (interface{}, int) {
		return l.listingService.MatchListings(c.Request.Context(), userID, request)
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	if statusCode >= 200 && statusCode < 300 {
		utils.RespondSuccess(c, response, "Listings matched successfully")
		return
	}
	c.JSON(statusCode, response)
}
