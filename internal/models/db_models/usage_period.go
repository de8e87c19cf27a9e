package db_models

import (
	"time"

	"github.com/google/uuid"
)

// UsagePeriod tracks per-feature consumption for one billing window. Exactly
// one row exists per (user, period start, period end); the unique index makes
// concurrent creation races benign. Historical rows are kept and never
// touched after their window closes.
type UsagePeriod struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_usage_user_period"`

	// Plan at the time the row was created. Reporting only; quota checks
	// read the subscription's current plan.
	PlanID uuid.UUID `gorm:"type:uuid;index"`

	PeriodStart time.Time `gorm:"type:date;not null;uniqueIndex:idx_usage_user_period"`
	PeriodEnd   time.Time `gorm:"type:date;not null;uniqueIndex:idx_usage_user_period"`

	ResumeCount      int64 `gorm:"default:0"`
	CoverLetterCount int64 `gorm:"default:0"`
	LinkedinCount    int64 `gorm:"default:0"`
	JobMatchCount    int64 `gorm:"default:0"`

	DisplayName string
}

// CountFor returns the consumption counter for a feature.
func (u *UsagePeriod) CountFor(feature string) int64 {
	switch feature {
	case FeatureResume:
		return u.ResumeCount
	case FeatureCoverLetter:
		return u.CoverLetterCount
	case FeatureLinkedin:
		return u.LinkedinCount
	case FeatureJobMatch:
		return u.JobMatchCount
	default:
		return 0
	}
}
