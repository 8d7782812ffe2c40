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
	"github.com/notevault/notevault/internal/pkg/cache"
)

const (
	statusPremium = "premium"
	statusFree    = "free"

	statusCacheTTL = 30 * time.Second
)

// Status is the read-model of a user's entitlement exposed to the frontend.
type Status struct {
	IsPremium    bool                 `json:"isPremium"`
	Subscription *models.Subscription `json:"subscription"`
	Status       string               `json:"status"`
}

// StatusReader exposes the current premium status for a user. It is a pure
// read over the rows the reconciler writes; absence of a row means free, not
// an error.
type StatusReader struct {
	repo Repository
}

func NewStatusReader(repo Repository) *StatusReader {
	return &StatusReader{repo: repo}
}

// Read returns the user's entitlement derived from the most recently created
// active subscription row. Results are cached briefly; the reconciler
// invalidates the cache on any mutation.
func (s *StatusReader) Read(ctx context.Context, uid string) (*Status, error) {
	if cached, err := cache.Get(statusCacheKey(uid)); err == nil {
		var status Status
		if err := json.Unmarshal([]byte(cached), &status); err == nil {
			return &status, nil
		}
	}

	sub, err := s.repo.LatestActiveSubscription(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.store(uid, &Status{IsPremium: false, Subscription: nil, Status: statusFree}), nil
		}
		return nil, fmt.Errorf("subscription lookup: %w", err)
	}

	status := &Status{
		IsPremium:    sub.IsPremium(),
		Subscription: sub,
		Status:       statusFree,
	}
	if status.IsPremium {
		status.Status = statusPremium
	}
	return s.store(uid, status), nil
}

func (s *StatusReader) store(uid string, status *Status) *Status {
	if payload, err := json.Marshal(status); err == nil {
		if err := cache.Set(statusCacheKey(uid), payload, statusCacheTTL); err != nil && !errors.Is(err, cache.ErrUnavailable) {
			log.Debugf("[Payments] status cache write failed for %s: %v", uid, err)
		}
	}
	return status
}

func statusCacheKey(uid string) string {
	return "subscription_status:" + uid
}

func invalidateStatusCache(uid string) {
	if err := cache.Delete(statusCacheKey(uid)); err != nil && !errors.Is(err, cache.ErrUnavailable) {
		log.Debugf("[Payments] status cache invalidation failed for %s: %v", uid, err)
	}
}
