package controllers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/notevault/notevault/app/models"
	"github.com/notevault/notevault/internal/pkg/config"
	"github.com/notevault/notevault/internal/pkg/payments"
	"github.com/notevault/notevault/internal/pkg/usercontext"
)

// PaymentController bridges HTTP to the checkout initiator and the webhook
// reconciler.
type PaymentController struct {
	initiator  *payments.CheckoutInitiator
	reconciler *payments.Reconciler
	repo       payments.Repository
	cfg        config.PaymentsConfig
}

func NewPaymentController(initiator *payments.CheckoutInitiator, reconciler *payments.Reconciler, repo payments.Repository, cfg config.PaymentsConfig) *PaymentController {
	return &PaymentController{
		initiator:  initiator,
		reconciler: reconciler,
		repo:       repo,
		cfg:        cfg,
	}
}

type createCheckoutRequest struct {
	ProductID string `json:"product_id"`
}

// HandleCreateCheckout starts a provider checkout for the authenticated user.
func (pc *PaymentController) HandleCreateCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req createCheckoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid JSON body")
		}
	}

	session, err := pc.initiator.CreateCheckout(c.Context(), userCtx.UID, userCtx.Email, req.ProductID)
	if err != nil {
		log.Errorf("[Payments] checkout creation failed for user %s: %v", userCtx.UID, err)
		return jsonError(c, fiber.StatusBadGateway, "checkout_failed", "Could not create checkout session")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":      true,
		"checkout_url": session.CheckoutURL,
		"session_id":   session.SessionID,
	})
}

// HandleWebhook receives payment lifecycle events from the provider. An
// authentic, parseable payload is always acknowledged with 200 regardless of
// the reconciliation outcome; the provider's retry budget is reserved for
// transport-level failures only.
func (pc *PaymentController) HandleWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	signature := firstHeaderValue(c, "webhook-signature", "dodo-signature", "x-webhook-signature")
	if !payments.VerifyWebhookSignature(rawBody, signature, pc.cfg.WebhookSecret) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid_signature", "Webhook signature verification failed")
	}

	var event payments.WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_payload", "Webhook body is not valid JSON")
	}

	// Reconciliation failures are dead-lettered internally; the delivery is
	// acknowledged either way so the provider does not retry-storm us.
	_ = pc.reconciler.Reconcile(c.Context(), &event)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Webhook processed",
	})
}

// HandlePaymentSuccess is the browser redirect target after a completed
// checkout. It updates the session row and bounces to the app root.
func (pc *PaymentController) HandlePaymentSuccess(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return c.Redirect("/?payment=error", fiber.StatusSeeOther)
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	if err := pc.repo.UpdatePaymentSessionStatus(ctx, sessionID, models.PaymentSessionCompleted); err != nil {
		log.Errorf("[Payments] could not mark session %s completed: %v", sessionID, err)
		return c.Redirect("/?payment=error", fiber.StatusSeeOther)
	}

	return c.Redirect("/?payment=success", fiber.StatusSeeOther)
}

// HandlePaymentCancel is the browser redirect target after an abandoned
// checkout.
func (pc *PaymentController) HandlePaymentCancel(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID != "" {
		ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
		defer cancel()

		if err := pc.repo.UpdatePaymentSessionStatus(ctx, sessionID, models.PaymentSessionCancelled); err != nil {
			log.Warnf("[Payments] could not mark session %s cancelled: %v", sessionID, err)
		}
	}

	return c.Redirect("/?payment=cancelled", fiber.StatusSeeOther)
}
