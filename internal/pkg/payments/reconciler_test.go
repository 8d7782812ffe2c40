package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/notevault/notevault/app/models"
	"github.com/notevault/notevault/internal/pkg/config"
)

// fakeRepo is an in-memory Repository used to exercise the reconciler
// without a database. Upsert semantics mirror the unique index on
// provider_subscription_id.
type fakeRepo struct {
	sessions map[string]*models.PaymentSession
	subs     []*models.Subscription
	failures []*models.ReconciliationFailure

	subWriteErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[string]*models.PaymentSession)}
}

func (f *fakeRepo) CreatePaymentSession(_ context.Context, s *models.PaymentSession) error {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	f.sessions[s.SessionID] = s
	return nil
}

func (f *fakeRepo) GetPaymentSession(_ context.Context, sessionID string) (*models.PaymentSession, error) {
	if s, ok := f.sessions[sessionID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdatePaymentSessionStatus(_ context.Context, sessionID, status string) error {
	if s, ok := f.sessions[sessionID]; ok {
		s.Status = status
		s.UpdatedAt = time.Now()
	}
	return nil
}

func (f *fakeRepo) UpsertSubscriptionByProviderSubID(_ context.Context, sub *models.Subscription) error {
	if f.subWriteErr != nil {
		return f.subWriteErr
	}
	for _, existing := range f.subs {
		if existing.ProviderSubscriptionID == sub.ProviderSubscriptionID {
			existing.UserID = sub.UserID
			existing.UserEmail = sub.UserEmail
			existing.Status = sub.Status
			existing.IsActive = sub.IsActive
			existing.SessionID = sub.SessionID
			existing.PaymentID = sub.PaymentID
			existing.UpdatedAt = time.Now()
			*sub = *existing
			return nil
		}
	}
	now := time.Now()
	sub.ID = uint(len(f.subs) + 1)
	sub.CreatedAt = now
	sub.UpdatedAt = now
	stored := *sub
	f.subs = append(f.subs, &stored)
	return nil
}

func (f *fakeRepo) CreateSubscription(_ context.Context, sub *models.Subscription) error {
	if f.subWriteErr != nil {
		return f.subWriteErr
	}
	now := time.Now()
	sub.ID = uint(len(f.subs) + 1)
	sub.CreatedAt = now
	sub.UpdatedAt = now
	stored := *sub
	f.subs = append(f.subs, &stored)
	return nil
}

func (f *fakeRepo) GetSubscriptionByProviderSubID(_ context.Context, providerSubID string) (*models.Subscription, error) {
	for _, sub := range f.subs {
		if sub.ProviderSubscriptionID == providerSubID {
			return sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetSubscriptionBySessionID(_ context.Context, sessionID string) (*models.Subscription, error) {
	for i := len(f.subs) - 1; i >= 0; i-- {
		if f.subs[i].SessionID == sessionID {
			return f.subs[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) SaveSubscription(_ context.Context, sub *models.Subscription) error {
	if f.subWriteErr != nil {
		return f.subWriteErr
	}
	for i, existing := range f.subs {
		if existing.ID == sub.ID {
			stored := *sub
			stored.UpdatedAt = time.Now()
			f.subs[i] = &stored
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) LatestActiveSubscription(_ context.Context, userID string) (*models.Subscription, error) {
	var latest *models.Subscription
	for _, sub := range f.subs {
		if sub.UserID != userID || !sub.IsActive {
			continue
		}
		if latest == nil || sub.CreatedAt.After(latest.CreatedAt) {
			latest = sub
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (f *fakeRepo) RecordFailure(_ context.Context, failure *models.ReconciliationFailure) error {
	f.failures = append(f.failures, failure)
	return nil
}

func testPaymentsConfig() config.PaymentsConfig {
	return config.PaymentsConfig{
		DefaultProductID: "premium_upgrade",
		ReconcileTimeout: 5 * time.Second,
	}
}

func succeededEvent() *WebhookEvent {
	return &WebhookEvent{
		Type: "payment.succeeded",
		Data: WebhookEventData{
			CheckoutSessionID: "cks_1",
			PaymentID:         "pay_1",
			SubscriptionID:    "sub_1",
			TotalAmount:       999,
			Currency:          "USD",
			Customer:          WebhookCustomer{Email: "u1@example.com", Name: "User One"},
			Metadata:          WebhookMetadata{UserID: "u1", UserEmail: "u1@example.com", Product: "premium_upgrade"},
		},
	}
}

func TestReconcileCompletedCreatesSubscription(t *testing.T) {
	repo := newFakeRepo()
	r := NewReconciler(repo, testPaymentsConfig())

	err := r.Reconcile(context.Background(), succeededEvent())
	require.NoError(t, err)

	require.Len(t, repo.subs, 1)
	sub := repo.subs[0]
	assert.Equal(t, "u1", sub.UserID)
	assert.Equal(t, models.SubscriptionStatusPremium, sub.Status)
	assert.True(t, sub.IsActive)
	assert.Equal(t, "sub_1", sub.ProviderSubscriptionID)
	assert.Equal(t, "pay_1", sub.PaymentID)
	assert.InDelta(t, 9.99, sub.Amount, 0.0001)
	assert.Equal(t, "USD", sub.Currency)
	assert.Empty(t, repo.failures)
}

func TestReconcileCompletedIsIdempotentUnderRedelivery(t *testing.T) {
	repo := newFakeRepo()
	r := NewReconciler(repo, testPaymentsConfig())

	event := succeededEvent()
	require.NoError(t, r.Reconcile(context.Background(), event))
	require.Len(t, repo.subs, 1)

	createdAt := repo.subs[0].CreatedAt
	updatedAt := repo.subs[0].UpdatedAt

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, r.Reconcile(context.Background(), succeededEvent()))

	require.Len(t, repo.subs, 1, "redelivery must not create a second row")
	assert.Equal(t, createdAt, repo.subs[0].CreatedAt)
	assert.True(t, repo.subs[0].UpdatedAt.After(updatedAt))
	assert.Equal(t, models.SubscriptionStatusPremium, repo.subs[0].Status)
	assert.True(t, repo.subs[0].IsActive)
}

func TestReconcileResolvesUserViaPaymentSession(t *testing.T) {
	repo := newFakeRepo()
	require.NoError(t, repo.CreatePaymentSession(context.Background(), &models.PaymentSession{
		SessionID: "cks_1",
		UserID:    "u1",
		UserEmail: "stored@example.com",
		Status:    models.PaymentSessionCreated,
	}))
	r := NewReconciler(repo, testPaymentsConfig())

	event := &WebhookEvent{
		Type: "payment.succeeded",
		Data: WebhookEventData{
			CheckoutSessionID: "cks_1",
			PaymentID:         "pay_9",
			SubscriptionID:    "sub_1",
			TotalAmount:       10905,
			Currency:          "INR",
		},
	}
	require.NoError(t, r.Reconcile(context.Background(), event))

	require.Len(t, repo.subs, 1)
	sub := repo.subs[0]
	assert.Equal(t, "u1", sub.UserID)
	assert.Equal(t, "stored@example.com", sub.UserEmail)
	assert.InDelta(t, 109.05, sub.Amount, 0.0001)
	assert.Equal(t, "INR", sub.Currency)
	assert.Equal(t, models.SubscriptionStatusPremium, sub.Status)
	assert.True(t, sub.IsActive)
	assert.Equal(t, models.PaymentSessionCompleted, repo.sessions["cks_1"].Status)
}

func TestReconcileDropsUnattributableEvent(t *testing.T) {
	repo := newFakeRepo()
	r := NewReconciler(repo, testPaymentsConfig())

	event := &WebhookEvent{
		Type: "payment.succeeded",
		Data: WebhookEventData{
			PaymentID:      "pay_1",
			SubscriptionID: "sub_1",
			TotalAmount:    999,
		},
	}
	err := r.Reconcile(context.Background(), event)
	require.ErrorIs(t, err, ErrUnattributable)

	assert.Empty(t, repo.subs, "unattributable events must not mutate subscriptions")
	require.Len(t, repo.failures, 1)
	assert.Equal(t, "payment.succeeded", repo.failures[0].EventType)
}

func TestReconcileCompletedDefaultsCurrencyAndProduct(t *testing.T) {
	repo := newFakeRepo()
	r := NewReconciler(repo, testPaymentsConfig())

	event := succeededEvent()
	event.Data.Currency = ""
	event.Data.Metadata.Product = ""
	require.NoError(t, r.Reconcile(context.Background(), event))

	require.Len(t, repo.subs, 1)
	assert.Equal(t, "USD", repo.subs[0].Currency)
	assert.Equal(t, "premium_upgrade", repo.subs[0].ProductID)
}

func TestReconcileCompletedWithoutProviderSubIDCreatesRow(t *testing.T) {
	repo := newFakeRepo()
	r := NewReconciler(repo, testPaymentsConfig())

	event := succeededEvent()
	event.Data.SubscriptionID = ""
	require.NoError(t, r.Reconcile(context.Background(), event))

	require.Len(t, repo.subs, 1)
	assert.Empty(t, repo.subs[0].ProviderSubscriptionID)
	assert.True(t, repo.subs[0].IsActive)
}

func TestReconcileFailedTransitionsExistingSubscription(t *testing.T) {
	repo := newFakeRepo()
	r := NewReconciler(repo, testPaymentsConfig())
	require.NoError(t, r.Reconcile(context.Background(), succeededEvent()))
	require.Len(t, repo.subs, 1)

	failed := succeededEvent()
	failed.Type = "payment.failed"
	failed.Data.PaymentID = "pay_2"
	require.NoError(t, r.Reconcile(context.Background(), failed))

	require.Len(t, repo.subs, 1, "failed events never create rows")
	assert.Equal(t, models.SubscriptionStatusFailed, repo.subs[0].Status)
	assert.False(t, repo.subs[0].IsActive)
	assert.Equal(t, "pay_2", repo.subs[0].PaymentID)
}

func TestReconcileCancelledMatchesBySessionID(t *testing.T) {
	repo := newFakeRepo()
	r := NewReconciler(repo, testPaymentsConfig())

	created := succeededEvent()
	created.Data.SubscriptionID = ""
	require.NoError(t, r.Reconcile(context.Background(), created))

	cancelled := succeededEvent()
	cancelled.Type = "checkout.cancelled"
	cancelled.Data.SubscriptionID = ""
	require.NoError(t, r.Reconcile(context.Background(), cancelled))

	require.Len(t, repo.subs, 1)
	assert.Equal(t, models.SubscriptionStatusCancelled, repo.subs[0].Status)
	assert.False(t, repo.subs[0].IsActive)
}

func TestReconcileFailedWithNoMatchingRowIsNoop(t *testing.T) {
	repo := newFakeRepo()
	r := NewReconciler(repo, testPaymentsConfig())

	failed := succeededEvent()
	failed.Type = "payment.failed"
	require.NoError(t, r.Reconcile(context.Background(), failed))

	assert.Empty(t, repo.subs)
	assert.Empty(t, repo.failures)
}

func TestReconcileIgnoresUnknownEventTypes(t *testing.T) {
	repo := newFakeRepo()
	r := NewReconciler(repo, testPaymentsConfig())

	event := succeededEvent()
	event.Type = "payment.refund.created"
	require.NoError(t, r.Reconcile(context.Background(), event))

	assert.Empty(t, repo.subs)
	assert.Empty(t, repo.failures)
}

func TestReconcileDeadLettersPersistenceFailures(t *testing.T) {
	repo := newFakeRepo()
	repo.subWriteErr = errors.New("store unavailable")
	r := NewReconciler(repo, testPaymentsConfig())

	err := r.Reconcile(context.Background(), succeededEvent())
	require.Error(t, err)

	assert.Empty(t, repo.subs)
	require.Len(t, repo.failures, 1)
	assert.Contains(t, repo.failures[0].Reason, "store unavailable")
	assert.Contains(t, repo.failures[0].PayloadJSON, "pay_1")
}
