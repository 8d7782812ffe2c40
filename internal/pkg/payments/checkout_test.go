package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notevault/notevault/app/models"
	"github.com/notevault/notevault/internal/pkg/config"
)

func TestClientCreateCheckoutSession(t *testing.T) {
	var gotReq CheckoutRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/checkouts", r.URL.Path)
		require.Equal(t, "Bearer key_test", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(CheckoutSession{
			SessionID:   "cks_42",
			CheckoutURL: "https://checkout.example.com/cks_42",
		})
	}))
	defer server.Close()

	client := NewClient(config.PaymentsConfig{
		APIBaseURL:     server.URL,
		APIKey:         "key_test",
		RequestTimeout: 5 * time.Second,
	})

	session, err := client.CreateCheckoutSession(context.Background(), CheckoutRequest{
		ProductID: "premium_upgrade",
		Metadata:  CheckoutMetadata{UserID: "u1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cks_42", session.SessionID)
	assert.Equal(t, "https://checkout.example.com/cks_42", session.CheckoutURL)
	assert.Equal(t, "u1", gotReq.Metadata.UserID)
}

func TestClientCreateCheckoutSessionProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid product"}`, http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient(config.PaymentsConfig{
		APIBaseURL:     server.URL,
		APIKey:         "key_test",
		RequestTimeout: 5 * time.Second,
	})

	_, err := client.CreateCheckoutSession(context.Background(), CheckoutRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=422")
}

func TestClientRequiresAPIKey(t *testing.T) {
	client := NewClient(config.PaymentsConfig{RequestTimeout: time.Second})
	_, err := client.CreateCheckoutSession(context.Background(), CheckoutRequest{})
	require.Error(t, err)
}

type fakeProviderClient struct {
	session *CheckoutSession
	err     error
	gotReq  CheckoutRequest
}

func (f *fakeProviderClient) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func TestCheckoutInitiatorPersistsSessionBeforeReturning(t *testing.T) {
	repo := newFakeRepo()
	provider := &fakeProviderClient{session: &CheckoutSession{
		SessionID:   "cks_7",
		CheckoutURL: "https://checkout.example.com/cks_7",
	}}

	initiator := NewCheckoutInitiator(provider, repo, config.PaymentsConfig{
		DefaultProductID: "premium_upgrade",
	}, "https://notes.example.com/")

	row, err := initiator.CreateCheckout(context.Background(), "u1", "u1@example.com", "")
	require.NoError(t, err)

	assert.Equal(t, "cks_7", row.SessionID)
	assert.Equal(t, models.PaymentSessionCreated, row.Status)
	assert.Equal(t, "premium_upgrade", row.ProductID, "missing product falls back to the configured default")

	stored, err := repo.GetPaymentSession(context.Background(), "cks_7")
	require.NoError(t, err, "session row must exist before the checkout URL is handed out")
	assert.Equal(t, "u1", stored.UserID)
	assert.Equal(t, "u1@example.com", stored.UserEmail)

	assert.Equal(t, "https://notes.example.com/payment/success", provider.gotReq.ReturnURL)
	assert.Equal(t, "u1", provider.gotReq.Metadata.UserID)
}

func TestCheckoutInitiatorRequiresUser(t *testing.T) {
	initiator := NewCheckoutInitiator(&fakeProviderClient{}, newFakeRepo(), config.PaymentsConfig{}, "")
	_, err := initiator.CreateCheckout(context.Background(), "", "", "p1")
	require.Error(t, err)
}
