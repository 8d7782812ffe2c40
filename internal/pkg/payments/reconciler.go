package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/notevault/notevault/app/models"
	"github.com/notevault/notevault/internal/pkg/config"
)

// ErrUnattributable marks an event that cannot be mapped to a user: no
// metadata user id and no resolvable checkout session. Such events are
// dropped and dead-lettered, never retried.
var ErrUnattributable = errors.New("event cannot be attributed to a user")

// Reconciler converts inbound payment lifecycle events into at-most-one net
// state change of the subscription table. Duplicate delivery is the expected
// case: the completed branch is keyed on the provider subscription id so
// replays converge on a single row.
type Reconciler struct {
	repo Repository
	cfg  config.PaymentsConfig
}

func NewReconciler(repo Repository, cfg config.PaymentsConfig) *Reconciler {
	return &Reconciler{repo: repo, cfg: cfg}
}

// Reconcile processes one webhook event. The returned error is for logging
// and tests only: the HTTP boundary acknowledges the delivery regardless, so
// the provider does not retry-storm on transient internal failures. Every
// failure is recorded to the dead-letter table before returning.
func (r *Reconciler) Reconcile(ctx context.Context, event *WebhookEvent) error {
	if r.cfg.ReconcileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.ReconcileTimeout)
		defer cancel()
	}

	var err error
	switch event.Kind() {
	case EventCompleted:
		err = r.handleCompleted(ctx, event)
	case EventFailed:
		err = r.handleTerminal(ctx, event, models.SubscriptionStatusFailed)
	case EventCancelled:
		err = r.handleTerminal(ctx, event, models.SubscriptionStatusCancelled)
	default:
		log.Infof("[Payments] ignoring webhook event type %q (payment_id=%s)", event.Type, event.Data.PaymentID)
		return nil
	}

	if err != nil {
		log.Errorf("[Payments] reconcile %s failed (payment_id=%s session=%s subscription=%s): %v",
			event.Type, event.Data.PaymentID, event.Data.CheckoutSessionID, event.Data.SubscriptionID, err)
		r.deadLetter(event, err)
	}
	return err
}

// resolveIdentity applies the shared attribution algorithm: prefer the
// event's own metadata, fall back to the checkout session row, else give up.
func (r *Reconciler) resolveIdentity(ctx context.Context, event *WebhookEvent) (uid, email string, err error) {
	email = event.Data.Metadata.UserEmail
	if email == "" {
		email = event.Data.Customer.Email
	}

	if event.Data.Metadata.UserID != "" {
		return event.Data.Metadata.UserID, email, nil
	}

	if event.Data.CheckoutSessionID != "" {
		session, lookupErr := r.repo.GetPaymentSession(ctx, event.Data.CheckoutSessionID)
		if lookupErr == nil {
			if email == "" {
				email = session.UserEmail
			}
			return session.UserID, email, nil
		}
		if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return "", "", fmt.Errorf("payment session lookup: %w", lookupErr)
		}
	}

	return "", "", ErrUnattributable
}

func (r *Reconciler) handleCompleted(ctx context.Context, event *WebhookEvent) error {
	uid, email, err := r.resolveIdentity(ctx, event)
	if err != nil {
		return err
	}

	currency := event.Data.Currency
	if currency == "" {
		currency = "USD"
	}
	product := event.Data.Metadata.Product
	if product == "" {
		product = r.cfg.DefaultProductID
	}

	now := time.Now()
	sub := &models.Subscription{
		UserID:                 uid,
		UserEmail:              email,
		Status:                 models.SubscriptionStatusPremium,
		SubscriptionType:       models.SubscriptionTypePremium,
		ProductID:              product,
		SessionID:              event.Data.CheckoutSessionID,
		PaymentID:              event.Data.PaymentID,
		ProviderSubscriptionID: event.Data.SubscriptionID,
		// Provider reports minor units; the stored value is major-unit decimal.
		Amount:   float64(event.Data.TotalAmount) / 100,
		Currency: currency,
		StartsAt: &now,
		IsActive: true,
	}

	if event.Data.SubscriptionID != "" {
		err = r.repo.UpsertSubscriptionByProviderSubID(ctx, sub)
	} else {
		err = r.repo.CreateSubscription(ctx, sub)
	}
	if err != nil {
		return fmt.Errorf("persist subscription: %w", err)
	}

	// Correlation bookkeeping; losing this update does not affect the grant.
	if event.Data.CheckoutSessionID != "" {
		if err := r.repo.UpdatePaymentSessionStatus(ctx, event.Data.CheckoutSessionID, models.PaymentSessionCompleted); err != nil {
			log.Warnf("[Payments] could not mark session %s completed: %v", event.Data.CheckoutSessionID, err)
		}
	}

	invalidateStatusCache(uid)
	log.Infof("[Payments] subscription %s now premium for user %s (payment_id=%s)",
		event.Data.SubscriptionID, uid, event.Data.PaymentID)
	return nil
}

// handleTerminal transitions an existing subscription to failed/cancelled.
// These branches only ever mutate rows the completed branch created; when no
// matching row exists there is nothing to do.
func (r *Reconciler) handleTerminal(ctx context.Context, event *WebhookEvent, status string) error {
	uid, _, err := r.resolveIdentity(ctx, event)
	if err != nil {
		return err
	}

	sub, err := r.findExisting(ctx, event)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Infof("[Payments] %s event for user %s matches no subscription, nothing to transition", event.Type, uid)
			return nil
		}
		return fmt.Errorf("subscription lookup: %w", err)
	}

	sub.Status = status
	sub.IsActive = false
	if event.Data.PaymentID != "" {
		sub.PaymentID = event.Data.PaymentID
	}
	if err := r.repo.SaveSubscription(ctx, sub); err != nil {
		return fmt.Errorf("persist subscription transition: %w", err)
	}

	invalidateStatusCache(uid)
	log.Infof("[Payments] subscription for user %s transitioned to %s", uid, status)
	return nil
}

func (r *Reconciler) findExisting(ctx context.Context, event *WebhookEvent) (*models.Subscription, error) {
	if event.Data.SubscriptionID != "" {
		sub, err := r.repo.GetSubscriptionByProviderSubID(ctx, event.Data.SubscriptionID)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if event.Data.CheckoutSessionID != "" {
		return r.repo.GetSubscriptionBySessionID(ctx, event.Data.CheckoutSessionID)
	}
	return nil, gorm.ErrRecordNotFound
}

// deadLetter persists the failed event for manual reconciliation. It runs on
// a fresh context because the event's own context may be what failed.
func (r *Reconciler) deadLetter(event *WebhookEvent, cause error) {
	payload, err := json.Marshal(event)
	if err != nil {
		payload = []byte("{}")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	failure := &models.ReconciliationFailure{
		EventType:   event.Type,
		PayloadJSON: string(payload),
		Reason:      cause.Error(),
	}
	if err := r.repo.RecordFailure(ctx, failure); err != nil {
		log.Errorf("[Payments] dead-letter write failed for %s event: %v", event.Type, err)
	}
}
