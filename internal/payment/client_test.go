package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_VerifyConfirmation(t *testing.T) {
	t.Run("accepted confirmation", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/confirmations/conf-123", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			json.NewEncoder(w).Encode(Confirmation{
				ID: "conf-123", Accepted: true, AmountCents: 8900, Currency: "USD",
			})
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "test-key")
		conf, err := client.VerifyConfirmation(context.Background(), "conf-123")

		require.NoError(t, err)
		assert.True(t, conf.Accepted)
		assert.Equal(t, int64(8900), conf.AmountCents)
	})

	t.Run("unknown confirmation id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "test-key")
		_, err := client.VerifyConfirmation(context.Background(), "nope")

		assert.ErrorIs(t, err, ErrConfirmationNotFound)
	})

	t.Run("processor error surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "test-key")
		_, err := client.VerifyConfirmation(context.Background(), "conf-123")

		assert.Error(t, err)
	})
}

func TestClient_RequestRefund(t *testing.T) {
	t.Run("refund accepted", func(t *testing.T) {
		var received RefundRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/refunds", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "test-key")
		err := client.RequestRefund(context.Background(), RefundRequest{
			RequestID:    "refund-1",
			UserID:       7,
			MembershipID: 3,
			AmountCents:  2500,
			Reason:       "membership cancelled",
		})

		require.NoError(t, err)
		assert.Equal(t, "refund-1", received.RequestID)
		assert.Equal(t, int64(2500), received.AmountCents)
	})

	t.Run("refund rejected by processor", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "test-key")
		err := client.RequestRefund(context.Background(), RefundRequest{RequestID: "refund-2"})

		assert.Error(t, err)
	})
}

func TestClient_CircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")

	for i := 0; i < 5; i++ {
		_, err := client.VerifyConfirmation(context.Background(), "conf-123")
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrProcessorUnavailable)
	}

	// breaker is open now: the request fails fast without reaching the server
	_, err := client.VerifyConfirmation(context.Background(), "conf-123")
	assert.ErrorIs(t, err, ErrProcessorUnavailable)
}
