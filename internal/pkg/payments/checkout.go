package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/notevault/notevault/app/models"
	"github.com/notevault/notevault/internal/pkg/config"
)

// ProviderClient creates checkout sessions at the payment provider.
type ProviderClient interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

// CheckoutRequest is the payload sent to the provider's checkout API. The
// metadata is echoed back in webhook events and is the primary correlation
// path for the reconciler.
type CheckoutRequest struct {
	ProductID     string           `json:"product_id"`
	ReturnURL     string           `json:"return_url"`
	CancelURL     string           `json:"cancel_url"`
	CustomerEmail string           `json:"customer_email,omitempty"`
	Metadata      CheckoutMetadata `json:"metadata"`
}

type CheckoutMetadata struct {
	UserID    string `json:"user_id"`
	UserEmail string `json:"user_email"`
	Product   string `json:"product"`
}

// CheckoutSession is the provider's response to a checkout creation.
type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// Client talks to the payment provider's HTTP API.
type Client struct {
	APIBaseURL string
	APIKey     string

	HTTPClient *http.Client
}

func NewClient(cfg config.PaymentsConfig) *Client {
	return &Client{
		APIBaseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		APIKey:     cfg.APIKey,
		HTTPClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

// CreateCheckoutSession creates a hosted checkout session at the provider.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, errors.New("payment provider API key is not configured")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/checkouts", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("checkout creation failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out CheckoutSession
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if out.SessionID == "" || out.CheckoutURL == "" {
		return nil, fmt.Errorf("checkout response missing session_id or checkout_url: %s", string(body))
	}
	return &out, nil
}

// CheckoutInitiator starts provider checkouts and records the session row
// the reconciler later uses as its correlation fallback.
type CheckoutInitiator struct {
	client ProviderClient
	repo   Repository
	cfg    config.PaymentsConfig

	publicDomain string
}

func NewCheckoutInitiator(client ProviderClient, repo Repository, cfg config.PaymentsConfig, publicDomain string) *CheckoutInitiator {
	return &CheckoutInitiator{
		client:       client,
		repo:         repo,
		cfg:          cfg,
		publicDomain: strings.TrimRight(publicDomain, "/"),
	}
}

// CreateCheckout creates a provider checkout session for the user. The
// PaymentSession row is written before the checkout URL is returned: a
// completion webhook can only reference a session the user has been
// redirected to, so the row is durably visible by the time it matters.
func (ci *CheckoutInitiator) CreateCheckout(ctx context.Context, uid, email, productID string) (*models.PaymentSession, error) {
	if uid == "" {
		return nil, errors.New("user id is required")
	}
	if productID == "" {
		productID = ci.cfg.DefaultProductID
	}

	session, err := ci.client.CreateCheckoutSession(ctx, CheckoutRequest{
		ProductID:     productID,
		ReturnURL:     ci.publicDomain + "/payment/success",
		CancelURL:     ci.publicDomain + "/payment/cancel",
		CustomerEmail: email,
		Metadata: CheckoutMetadata{
			UserID:    uid,
			UserEmail: email,
			Product:   productID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	row := &models.PaymentSession{
		SessionID:   session.SessionID,
		UserID:      uid,
		UserEmail:   email,
		ProductID:   productID,
		Status:      models.PaymentSessionCreated,
		CheckoutURL: session.CheckoutURL,
	}
	if err := ci.repo.CreatePaymentSession(ctx, row); err != nil {
		return nil, fmt.Errorf("persist payment session: %w", err)
	}

	return row, nil
}
