package summarize

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

func TestHTTPClient_Summarize(t *testing.T) {
	t.Run("posts the url and returns the summary", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/summarize", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req struct {
				URL   string `json:"url"`
				Title string `json:"title"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "https://example.com/article", req.URL)
			assert.Equal(t, "An article", req.Title)

			json.NewEncoder(w).Encode(map[string]string{"summary": "  A concise summary.  "})
		}))
		defer server.Close()

		client := NewHTTPClient(server.URL, 5*time.Second)
		summary, err := client.Summarize(context.Background(), "https://example.com/article", "An article")
		require.NoError(t, err)
		assert.Equal(t, "A concise summary.", summary)
	})

	t.Run("non-2xx becomes an upstream error without the body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "internal stack trace with secrets", http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewHTTPClient(server.URL, 5*time.Second)
		_, err := client.Summarize(context.Background(), "https://example.com", "")
		require.Error(t, err)

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
		assert.NotContains(t, err.Error(), "stack trace")
	})

	t.Run("blank summary is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"summary": "   "})
		}))
		defer server.Close()

		client := NewHTTPClient(server.URL, 5*time.Second)
		_, err := client.Summarize(context.Background(), "https://example.com", "")
		assert.ErrorIs(t, err, ErrEmptySummary)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		client := NewHTTPClient(server.URL, 5*time.Second)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.Summarize(ctx, "https://example.com", "")
		assert.Error(t, err)
	})
}
