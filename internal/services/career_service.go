package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"careerkit/internal/models/request_models"
	"careerkit/pkg/utils"
)

// ICareerService is the family of feature-proxy bodies the quota engine
// gates. Each method returns (response, HTTP status) so it can be passed
// straight in as a GatedOperation; a non-2xx status means no quota is
// consumed.
type ICareerService interface {
	AnalyzeResume(ctx context.Context, req request_models.AnalyzeResumeRequest) (interface{}, int)
	RoastResume(ctx context.Context, req request_models.RoastResumeRequest) (interface{}, int)
	GenerateCoverLetter(ctx context.Context, req request_models.CoverLetterRequest) (interface{}, int)
	OptimizeLinkedin(ctx context.Context, req request_models.LinkedinOptimizeRequest) (interface{}, int)
}

type CareerService struct {
	client utils.GenerationClient
	logger *zap.Logger
}

func NewCareerService(client utils.GenerationClient, logger *zap.Logger) ICareerService {
	return &CareerService{client: client, logger: logger}
}

// generate runs one prompt through the AI collaborator and normalizes the
// outcome: parsed JSON on success, 502 when the downstream service fails.
func (s *CareerService) generate(ctx context.Context, feature, system, prompt string) (interface{}, int) {
	content, err := s.client.GenerateJSON(ctx, system, prompt)
	if err != nil {
		s.logger.Error("generation request failed",
			zap.String("feature", feature),
			zap.Error(err))
		return map[string]string{"error": "The analysis service is temporarily unavailable."}, http.StatusBadGateway
	}

	var result json.RawMessage
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		s.logger.Error("generation returned invalid json", zap.String("feature", feature))
		return map[string]string{"error": "The analysis service returned an unexpected response."}, http.StatusBadGateway
	}
	return result, http.StatusOK
}

func (s *CareerService) AnalyzeResume(ctx context.Context, req request_models.AnalyzeResumeRequest) (interface{}, int) {
	system := "You are an expert resume reviewer. Return JSON only with keys: " +
		`"match_score" (0-100), "strengths" (array), "gaps" (array), "suggestions" (array).`
	prompt := fmt.Sprintf(
		"Resume:\n%s\n\nJob description:\n%s\n\nCompany website: %s\nAdditional comments: %s",
		req.CurrentResume, req.JobDescription, req.CompanyWebsite, req.AdditionalComments)
	return s.generate(ctx, "analyze_resume", system, prompt)
}

func (s *CareerService) RoastResume(ctx context.Context, req request_models.RoastResumeRequest) (interface{}, int) {
	system := "You are a brutally honest resume critic. Return JSON only with keys: " +
		`"roast" (string), "worst_offenses" (array), "fixes" (array).`
	prompt := "Resume:\n" + req.CurrentResume
	return s.generate(ctx, "roast_resume", system, prompt)
}

func (s *CareerService) GenerateCoverLetter(ctx context.Context, req request_models.CoverLetterRequest) (interface{}, int) {
	tone := req.Tone
	if tone == "" {
		tone = "professional"
	}
	system := "You write tailored cover letters. Return JSON only with keys: " +
		`"cover_letter" (string), "highlights" (array).`
	prompt := fmt.Sprintf(
		"Tone: %s\nCompany: %s\n\nResume:\n%s\n\nJob description:\n%s",
		tone, req.CompanyName, req.Resume, req.JobDescription)
	return s.generate(ctx, "cover_letter", system, prompt)
}

func (s *CareerService) OptimizeLinkedin(ctx context.Context, req request_models.LinkedinOptimizeRequest) (interface{}, int) {
	system := "You optimize LinkedIn profiles. Return JSON only with keys: " +
		`"headline" (string), "about" (string), "improvements" (array).`
	prompt := fmt.Sprintf("Target role: %s\n\nCurrent profile:\n%s", req.TargetRole, req.ProfileText)
	return s.generate(ctx, "linkedin_optimizer", system, prompt)
}
