package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"careerkit/internal/models/db_models"
)

type ListingWithSimilarity struct {
	db_models.JobListing
	Similarity float64
}

type IListingRepository interface {
	CreateListing(ctx context.Context, listing *db_models.JobListing) error
	GetListingsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]db_models.JobListing, error)
	SearchByVector(ctx context.Context, userID uuid.UUID, vector pgvector.Vector, limit int) ([]ListingWithSimilarity, error)
}

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) IListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) CreateListing(ctx context.Context, listing *db_models.JobListing) error {
	return classify(r.db.WithContext(ctx).Create(listing).Error)
}

func (r *ListingRepository) GetListingsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]db_models.JobListing, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var listings []db_models.JobListing
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&listings).Error
	if err != nil {
		return nil, classify(err)
	}
	return listings, nil
}

func (r *ListingRepository) SearchByVector(ctx context.Context, userID uuid.UUID, vector pgvector.Vector, limit int) ([]ListingWithSimilarity, error) {
	if limit <= 0 || limit > 50 {
		limit = 15
	}

	var results []ListingWithSimilarity

	query := `
        SELECT *, (1 - (embedding <=> $1)) AS similarity
        FROM job_listings
        WHERE user_id = $2
          AND (1 - (embedding <=> $1)) > 0.5
        ORDER BY embedding <=> $1
        LIMIT $3
    `

	err := r.db.WithContext(ctx).Raw(query, vector.String(), userID, limit).Scan(&results).Error
	if err != nil {
		return nil, classify(err)
	}
	return results, nil
}
