package db_models

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubStatusFree       SubscriptionStatus = "free"
	SubStatusActive     SubscriptionStatus = "active"
	SubStatusProcessing SubscriptionStatus = "processing"
	SubStatusCanceling  SubscriptionStatus = "canceling"
	SubStatusPastDue    SubscriptionStatus = "past_due"
)

// Subscription is the one billing row a user ever has. It is created lazily
// on first gated access or eagerly by a provisioning trigger, mutated by
// rollover / webhook reconciliation / cancellation, and never deleted:
// termination downgrades it in place.
type Subscription struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	PlanID uuid.UUID `gorm:"type:uuid;index;not null"`

	Status SubscriptionStatus `gorm:"index;default:'free'"`

	// Nullable until the first checkout couples us to the payment provider.
	StripeCustomerID     *string `gorm:"index"`
	StripeSubscriptionID *string `gorm:"index"`

	// Inclusive calendar dates. End never precedes start, and rollover only
	// ever advances it.
	CurrentPeriodStart time.Time `gorm:"type:date;not null"`
	CurrentPeriodEnd   time.Time `gorm:"type:date;not null"`

	Plan Plan `gorm:"foreignKey:PlanID"`
}

// PeriodExpired reports whether today is strictly after the period end.
func (s *Subscription) PeriodExpired(today time.Time) bool {
	return today.After(s.CurrentPeriodEnd)
}
