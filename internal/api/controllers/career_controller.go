package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"careerkit/internal/models/db_models"
	"careerkit/internal/models/request_models"
	"careerkit/internal/services"
	"careerkit/pkg/auth"
	"careerkit/pkg/middleware"
	"careerkit/pkg/utils"
)

type CareerController struct {
	careerService services.ICareerService
	quotaService  services.IQuotaService
}

func NewCareerController(careerService services.ICareerService, quotaService services.IQuotaService) *CareerController {
	return &CareerController{
		careerService: careerService,
		quotaService:  quotaService,
	}
}

// runGated routes one feature request through the quota engine and writes
// whatever came back, success or not, with the status the body reported.
func (cc *CareerController) runGated(c *gin.Context, principal auth.Principal, feature string, op services.GatedOperation) {
	response, statusCode, err := cc.quotaService.AuthorizeAndGate(c.Request.Context(), principal, feature, 1, op)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	if statusCode >= 200 && statusCode < 300 {
		utils.RespondSuccess(c, response, "Request completed successfully")
		return
	}
	c.JSON(statusCode, response)
}

// AnalyzeResume godoc
// @Summary Analyze a resume against a job description
// @Description Metered under the resume feature quota
// @Tags Career
// @Accept json
// @Produce json
// @Param request body request_models.AnalyzeResumeRequest true "Analyze request"
// @Success 200 {object} utils.APIResponse
// @Failure 429 {object} utils.QuotaExceededResponse
// @Security BearerAuth
// @Router /career/resume/analyze [post]
func (cc *CareerController) AnalyzeResume(c *gin.Context) {
	var request request_models.AnalyzeResumeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	cc.runGated(c, principal, db_models.FeatureResume, func() (interface{}, int) {
		return cc.careerService.AnalyzeResume(c.Request.Context(), request)
	})
}

// RoastResume godoc
// @Summary Get a brutally honest resume critique
// @Description Metered under the resume feature quota
// @Tags Career
// @Accept json
// @Produce json
// @Param request body request_models.RoastResumeRequest true "Roast request"
// @Success 200 {object} utils.APIResponse
// @Failure 429 {object} utils.QuotaExceededResponse
// @Security BearerAuth
// @Router /career/resume/roast [post]
func (cc *CareerController) RoastResume(c *gin.Context) {
	var request request_models.RoastResumeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	cc.runGated(c, principal, db_models.FeatureResume, func() (interface{}, int) {
		return cc.careerService.RoastResume(c.Request.Context(), request)
	})
}

// GenerateCoverLetter godoc
// @Summary Generate a tailored cover letter
// @Description Metered under the cover_letter feature quota
// @Tags Career
// @Accept json
// @Produce json
// @Param request body request_models.CoverLetterRequest true "Cover letter request"
// @Success 200 {object} utils.APIResponse
// @Failure 429 {object} utils.QuotaExceededResponse
// @Security BearerAuth
// @Router /career/cover-letter [post]
func (cc *CareerController) GenerateCoverLetter(c *gin.Context) {
	var request request_models.CoverLetterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	cc.runGated(c, principal, db_models.FeatureCoverLetter, func() (interface{}, int) {
		return cc.careerService.GenerateCoverLetter(c.Request.Context(), request)
	})
}

// OptimizeLinkedin godoc
// @Summary Optimize a LinkedIn profile
// @Description Metered under the linkedin feature quota
// @Tags Career
// @Accept json
// @Produce json
// @Param request body request_models.LinkedinOptimizeRequest true "Optimize request"
// @Success 200 {object} utils.APIResponse
// @Failure 429 {object} utils.QuotaExceededResponse
// @Security BearerAuth
// @Router /career/linkedin/optimize [post]
func (cc *CareerController) OptimizeLinkedin(c *gin.Context) {
	var request request_models.LinkedinOptimizeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	cc.runGated(c, principal, db_models.FeatureLinkedin, func() (interface{}, int) {
		return cc.careerService.OptimizeLinkedin(c.Request.Context(), request)
	})
}
