package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"careerkit/internal/models/db_models"
	"careerkit/pkg/utils"
)

type IUsageRepository interface {
	GetForPeriod(ctx context.Context, userID uuid.UUID, start, end time.Time) (*db_models.UsagePeriod, error)

	// CreateIfAbsent inserts a zeroed usage row unless one exists for the
	// (user, period) triple. Duplicate-insert races are benign.
	CreateIfAbsent(ctx context.Context, usage *db_models.UsagePeriod) error

	// IncrementCounter bumps one feature counter, keyed by the row id rather
	// than user+period so a concurrent rollover can never redirect the write
	// to a newer period's row.
	IncrementCounter(ctx context.Context, id uuid.UUID, feature string, n int64) error
}

type UsageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) IUsageRepository {
	return &UsageRepository{db: db}
}

func (r *UsageRepository) GetForPeriod(ctx context.Context, userID uuid.UUID, start, end time.Time) (*db_models.UsagePeriod, error) {
	var usage db_models.UsagePeriod
	err := r.db.WithContext(ctx).
		First(&usage, "user_id = ? AND period_start = ? AND period_end = ?", userID, start, end).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, classify(err)
	}
	return &usage, nil
}

func (r *UsageRepository) CreateIfAbsent(ctx context.Context, usage *db_models.UsagePeriod) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "period_start"},
				{Name: "period_end"},
			},
			DoNothing: true,
		}).
		Create(usage).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return classify(err)
	}
	return nil
}

func (r *UsageRepository) IncrementCounter(ctx context.Context, id uuid.UUID, feature string, n int64) error {
	col, ok := db_models.CounterColumn(feature)
	if !ok {
		return fmt.Errorf("%w: unknown feature %q", utils.ErrDatabaseError, feature)
	}
	err := r.db.WithContext(ctx).
		Model(&db_models.UsagePeriod{}).
		Where("id = ?", id).
		UpdateColumn(col, gorm.Expr(col+" + ?", n)).Error
	return classify(err)
}
