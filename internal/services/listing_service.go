package services

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"careerkit/internal/models/db_models"
	"careerkit/internal/models/request_models"
	"careerkit/internal/models/response_models"
	"careerkit/internal/repositories"
	"careerkit/pkg/utils"
)

// IListingService stores job postings with an embedding of their
// description and matches a resume against them. Matching is metered as
// the job_match feature; saving a listing is not.
type IListingService interface {
	SaveListing(ctx context.Context, userID uuid.UUID, req request_models.SaveListingRequest) (*db_models.JobListing, error)
	ListListings(ctx context.Context, userID uuid.UUID) ([]db_models.JobListing, error)
	MatchListings(ctx context.Context, userID uuid.UUID, req request_models.MatchListingsRequest) (interface{}, int)
}

type ListingService struct {
	repo      repositories.IListingRepository
	embedding utils.EmbeddingClient
	logger    *zap.Logger
}

func NewListingService(repo repositories.IListingRepository, embedding utils.EmbeddingClient, logger *zap.Logger) IListingService {
	return &ListingService{repo: repo, embedding: embedding, logger: logger}
}

func (s *ListingService) SaveListing(ctx context.Context, userID uuid.UUID, req request_models.SaveListingRequest) (*db_models.JobListing, error) {
	vector, err := s.embedding.GetEmbedding(ctx, req.Title+"\n"+req.Description)
	if err != nil {
		s.logger.Error("failed to embed job listing", zap.Error(err))
		return nil, err
	}

	listing := &db_models.JobListing{
		UserID:      userID,
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		URL:         req.URL,
		Description: req.Description,
		Embedding:   vector,
	}
	if err := s.repo.CreateListing(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *ListingService) ListListings(ctx context.Context, userID uuid.UUID) ([]db_models.JobListing, error) {
	return s.repo.GetListingsByUser(ctx, userID, 0)
}

// MatchListings is a GatedOperation body: quota is only consumed when the
// search actually ran.
func (s *ListingService) MatchListings(ctx context.Context, userID uuid.UUID, req request_models.MatchListingsRequest) (interface{}, int) {
	vector, err := s.embedding.GetEmbedding(ctx, req.ResumeText)
	if err != nil {
		s.logger.Error("failed to embed resume text", zap.Error(err))
		return map[string]string{"error": "The matching service is temporarily unavailable."}, http.StatusBadGateway
	}

	rows, err := s.repo.SearchByVector(ctx, userID, vector, req.Limit)
	if err != nil {
		s.logger.Error("listing similarity search failed", zap.Error(err))
		return map[string]string{"error": "Failed to search saved listings."}, http.StatusInternalServerError
	}

	matches := make([]response_models.ListingMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, response_models.ListingMatch{
			ID:         row.ID.String(),
			Title:      row.Title,
			Company:    row.Company,
			Location:   row.Location,
			URL:        row.URL,
			Similarity: row.Similarity,
		})
	}
	return matches, http.StatusOK
}
