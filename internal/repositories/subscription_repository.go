package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"careerkit/internal/models/db_models"
)

// ISubscriptionRepository owns all writes to the subscriptions table. Every
// mutation is keyed by a stable business identifier (user id, row id, or a
// payment-provider ref) so concurrent writers and webhook replays converge.
type ISubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*db_models.Subscription, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*db_models.Subscription, error)
	GetByStripeSubscriptionID(ctx context.Context, subID string) (*db_models.Subscription, error)

	// CreateIfAbsent inserts the row unless one already exists for the user.
	// Losing the insert race is fine; callers re-fetch afterwards.
	CreateIfAbsent(ctx context.Context, sub *db_models.Subscription) error

	// UpdatePeriod advances the billing window of a specific row.
	UpdatePeriod(ctx context.Context, id uuid.UUID, start, end time.Time) error

	SetStatus(ctx context.Context, id uuid.UUID, status db_models.SubscriptionStatus) error
	SetStatusByStripeSubscriptionID(ctx context.Context, stripeSubID string, status db_models.SubscriptionStatus) error
	SetStripeCustomerID(ctx context.Context, userID uuid.UUID, customerID string) error

	// ApplyCheckout provisions the paid plan and provider refs, keyed by
	// user id. Re-applying with the same refs is a no-op at the data level.
	ApplyCheckout(ctx context.Context, userID uuid.UUID, planID uuid.UUID, customerID, stripeSubID string, start, end time.Time) error

	// ApplyRenewal advances the period reported by the payment provider and
	// reactivates the subscription.
	ApplyRenewal(ctx context.Context, id uuid.UUID, stripeSubID string, start, end time.Time) error

	// Downgrade resets the row to the free tier and clears provider refs.
	Downgrade(ctx context.Context, id uuid.UUID, freePlanID uuid.UUID, start, end time.Time) error
}

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) ISubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*db_models.Subscription, error) {
	var sub db_models.Subscription
	err := r.db.WithContext(ctx).First(&sub, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, classify(err)
	}
	return &sub, nil
}

func (r *SubscriptionRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*db_models.Subscription, error) {
	var sub db_models.Subscription
	err := r.db.WithContext(ctx).First(&sub, "stripe_customer_id = ?", customerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, classify(err)
	}
	return &sub, nil
}

func (r *SubscriptionRepository) GetByStripeSubscriptionID(ctx context.Context, subID string) (*db_models.Subscription, error) {
	var sub db_models.Subscription
	err := r.db.WithContext(ctx).First(&sub, "stripe_subscription_id = ?", subID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, classify(err)
	}
	return &sub, nil
}

func (r *SubscriptionRepository) CreateIfAbsent(ctx context.Context, sub *db_models.Subscription) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(sub).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return classify(err)
	}
	return nil
}

func (r *SubscriptionRepository) UpdatePeriod(ctx context.Context, id uuid.UUID, start, end time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&db_models.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_period_start": start,
			"current_period_end":   end,
			"updated_at":           time.Now().Unix(),
		}).Error
	return classify(err)
}

func (r *SubscriptionRepository) SetStatus(ctx context.Context, id uuid.UUID, status db_models.SubscriptionStatus) error {
	err := r.db.WithContext(ctx).
		Model(&db_models.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().Unix(),
		}).Error
	return classify(err)
}

func (r *SubscriptionRepository) SetStatusByStripeSubscriptionID(ctx context.Context, stripeSubID string, status db_models.SubscriptionStatus) error {
	err := r.db.WithContext(ctx).
		Model(&db_models.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().Unix(),
		}).Error
	return classify(err)
}

func (r *SubscriptionRepository) SetStripeCustomerID(ctx context.Context, userID uuid.UUID, customerID string) error {
	err := r.db.WithContext(ctx).
		Model(&db_models.Subscription{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"stripe_customer_id": customerID,
			"updated_at":         time.Now().Unix(),
		}).Error
	return classify(err)
}

func (r *SubscriptionRepository) ApplyCheckout(ctx context.Context, userID uuid.UUID, planID uuid.UUID, customerID, stripeSubID string, start, end time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&db_models.Subscription{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"plan_id":                planID,
			"status":                 db_models.SubStatusActive,
			"stripe_customer_id":     customerID,
			"stripe_subscription_id": stripeSubID,
			"current_period_start":   start,
			"current_period_end":     end,
			"updated_at":             time.Now().Unix(),
		}).Error
	return classify(err)
}

func (r *SubscriptionRepository) ApplyRenewal(ctx context.Context, id uuid.UUID, stripeSubID string, start, end time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&db_models.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":                 db_models.SubStatusActive,
			"stripe_subscription_id": stripeSubID,
			"current_period_start":   start,
			"current_period_end":     end,
			"updated_at":             time.Now().Unix(),
		}).Error
	return classify(err)
}

func (r *SubscriptionRepository) Downgrade(ctx context.Context, id uuid.UUID, freePlanID uuid.UUID, start, end time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&db_models.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"plan_id":                freePlanID,
			"status":                 db_models.SubStatusFree,
			"stripe_customer_id":     nil,
			"stripe_subscription_id": nil,
			"current_period_start":   start,
			"current_period_end":     end,
			"updated_at":             time.Now().Unix(),
		}).Error
	return classify(err)
}
