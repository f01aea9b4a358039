package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateCheckout(t *testing.T) {
	t.Run("builds the provider payload and returns the checkout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/checkouts", r.URL.Path)
			assert.Equal(t, "application/vnd.api+json", r.Header.Get("Accept"))
			assert.Equal(t, "application/vnd.api+json", r.Header.Get("Content-Type"))
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var payload struct {
				Data struct {
					Type          string `json:"type"`
					Relationships struct {
						Store struct {
							Data struct {
								Type string `json:"type"`
								ID   string `json:"id"`
							} `json:"data"`
						} `json:"store"`
						Variant struct {
							Data struct {
								Type string `json:"type"`
								ID   string `json:"id"`
							} `json:"data"`
						} `json:"variant"`
					} `json:"relationships"`
				} `json:"data"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "checkouts", payload.Data.Type)
			assert.Equal(t, "stores", payload.Data.Relationships.Store.Data.Type)
			assert.Equal(t, "store-1", payload.Data.Relationships.Store.Data.ID)
			assert.Equal(t, "variants", payload.Data.Relationships.Variant.Data.Type)
			assert.Equal(t, "variant-9", payload.Data.Relationships.Variant.Data.ID)

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"id": "chk-42",
					"attributes": map[string]any{
						"url": "https://pay.example.com/chk-42",
					},
				},
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", "store-1")
		result, err := client.CreateCheckout(context.Background(), "variant-9")
		require.NoError(t, err)
		assert.Equal(t, "chk-42", result.ID)
		assert.Equal(t, "https://pay.example.com/chk-42", result.URL)
	})

	t.Run("rejects an empty variant id without calling the provider", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", "store-1")
		_, err := client.CreateCheckout(context.Background(), "  ")
		assert.Error(t, err)
		assert.False(t, called)
	})

	t.Run("provider errors stay opaque", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"errors":[{"detail":"invalid api key"}]}`, http.StatusUnauthorized)
		}))
		defer server.Close()

		client := NewClient(server.URL, "bad-key", "store-1")
		_, err := client.CreateCheckout(context.Background(), "variant-9")
		require.ErrorIs(t, err, ErrProviderUnavailable)
		assert.NotContains(t, err.Error(), "invalid api key")
	})

	t.Run("malformed provider response is a provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", "store-1")
		_, err := client.CreateCheckout(context.Background(), "variant-9")
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})

	t.Run("response without a checkout url is a provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"id": "chk-1"}})
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", "store-1")
		_, err := client.CreateCheckout(context.Background(), "variant-9")
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})
}
