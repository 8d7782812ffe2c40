package payments

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/notevault/notevault/app/models"
)

// Repository provides the store operations the payment components need.
// PaymentSession rows are owned by the checkout initiator, Subscription rows
// by the reconciler; the status reader only reads.
type Repository interface {
	CreatePaymentSession(ctx context.Context, session *models.PaymentSession) error
	GetPaymentSession(ctx context.Context, sessionID string) (*models.PaymentSession, error)
	UpdatePaymentSessionStatus(ctx context.Context, sessionID, status string) error

	UpsertSubscriptionByProviderSubID(ctx context.Context, sub *models.Subscription) error
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	GetSubscriptionByProviderSubID(ctx context.Context, providerSubID string) (*models.Subscription, error)
	GetSubscriptionBySessionID(ctx context.Context, sessionID string) (*models.Subscription, error)
	SaveSubscription(ctx context.Context, sub *models.Subscription) error
	LatestActiveSubscription(ctx context.Context, userID string) (*models.Subscription, error)

	RecordFailure(ctx context.Context, failure *models.ReconciliationFailure) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payments repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreatePaymentSession(ctx context.Context, session *models.PaymentSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *gormRepository) GetPaymentSession(ctx context.Context, sessionID string) (*models.PaymentSession, error) {
	var session models.PaymentSession
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *gormRepository) UpdatePaymentSessionStatus(ctx context.Context, sessionID, status string) error {
	return r.db.WithContext(ctx).Model(&models.PaymentSession{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// UpsertSubscriptionByProviderSubID inserts the subscription or, when a row
// with the same provider subscription id already exists, updates it in
// place. The single statement makes duplicate webhook delivery converge on
// one row even under concurrent redelivery; created_at is never touched on
// the update path.
func (r *gormRepository) UpsertSubscriptionByProviderSubID(ctx context.Context, sub *models.Subscription) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider_subscription_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id",
			"user_email",
			"status",
			"is_active",
			"session_id",
			"payment_id",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID and created_at reflect the stored row after upsert.
	return r.db.WithContext(ctx).
		Where("provider_subscription_id = ?", sub.ProviderSubscriptionID).
		First(sub).Error
}

func (r *gormRepository) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *gormRepository) GetSubscriptionByProviderSubID(ctx context.Context, providerSubID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Where("provider_subscription_id = ?", providerSubID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) GetSubscriptionBySessionID(ctx context.Context, sessionID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) SaveSubscription(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *gormRepository) LatestActiveSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) RecordFailure(ctx context.Context, failure *models.ReconciliationFailure) error {
	return r.db.WithContext(ctx).Create(failure).Error
}
