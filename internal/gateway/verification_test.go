package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchTraditionalFactors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/credit-score/traditional", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(7), body["user_id"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]float64{
				"payment_history":    85,
				"credit_utilization": 60,
				"credit_history":     72,
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second)

	factors, err := client.FetchTraditionalFactors(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 85.0, factors.PaymentHistory)
	assert.Equal(t, 60.0, factors.CreditUtilization)
	assert.Equal(t, 72.0, factors.CreditHistory)
}

func TestVerifyIdentity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/identity/verify", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]bool{"verified": true},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second)

	verified, err := client.VerifyIdentity(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, verified)
}

func TestServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second)

	_, err := client.FetchTraditionalFactors(context.Background(), 7)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClientErrorIsNotUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second)

	_, err := client.FetchTraditionalFactors(context.Background(), 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestTimeoutIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 20*time.Millisecond)

	_, err := client.FetchTraditionalFactors(context.Background(), 7)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUnreachableHostIsUnavailable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "test-key", 100*time.Millisecond)

	_, err := client.VerifyIdentity(context.Background(), 7)
	assert.ErrorIs(t, err, ErrUnavailable)
}
