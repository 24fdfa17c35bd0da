package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixstream/pixstream/internal/models"
	"github.com/pixstream/pixstream/internal/service"
	"github.com/pixstream/pixstream/internal/storage/sqlite"
)

// setupTestServer builds a server over a temp SQLite store with fast
// long-poll timings.
func setupTestServer(t *testing.T) (*httptest.Server, *sqlite.SQLiteStore) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "pixstream-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := service.Config{
		MaxWait:      100 * time.Millisecond,
		PollInterval: 30 * time.Millisecond,
	}

	mux := http.NewServeMux()
	New(service.NewProducerService(store), service.NewStreamService(store, cfg)).Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server, store
}

func doRequest(t *testing.T, method, url, contentType string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func TestPostMessages(t *testing.T) {
	server, _ := setupTestServer(t)

	t.Run("returns 201 and the inserted messages", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, server.URL+"/msgs/32074986/5", "")
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var msgs []models.PixMessage
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&msgs))
		require.Len(t, msgs, 5)
		for _, m := range msgs {
			assert.Len(t, m.EndToEndId, 32)
			assert.Equal(t, "32074986", m.Recebedor.Ispb)
		}
	})

	t.Run("returns 400 for a non-numeric count", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, server.URL+"/msgs/32074986/invalid", "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Invalid number of messages", body["error"])
	})

	t.Run("returns 400 for a non-positive count", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, server.URL+"/msgs/32074986/0", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestStreamStartSingleObject(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/msgs/32074986/1", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var produced []models.PixMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&produced))

	resp = doRequest(t, http.MethodGet, server.URL+"/32074986/stream/start", "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Single-object negotiation: the body is one object, not an array.
	var msg models.PixMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	assert.Equal(t, produced[0], msg)

	pullNext := resp.Header.Get("Pull-Next")
	assert.True(t, strings.HasPrefix(pullNext, "/32074986/stream/"), "Pull-Next was %q", pullNext)
}

func TestStreamStartBatch(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/msgs/32074986/12", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, server.URL+"/32074986/stream/start", "multipart/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var msgs []models.PixMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msgs))
	assert.Len(t, msgs, 10, "batch negotiation delivers at most 10")
	assert.NotEmpty(t, resp.Header.Get("Pull-Next"))

	// Media type parameters do not break the negotiation.
	resp = doRequest(t, http.MethodGet, server.URL+"/32074986/stream/start", "multipart/json; charset=utf-8")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rest []models.PixMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rest))
	assert.Len(t, rest, 2)
}

func TestStreamStartTimeout(t *testing.T) {
	server, store := setupTestServer(t)

	start := time.Now()
	resp := doRequest(t, http.MethodGet, server.URL+"/32074986/stream/start", "application/json")
	elapsed := time.Since(start)

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond, "the long poll should run to its deadline")

	pullNext := resp.Header.Get("Pull-Next")
	require.True(t, strings.HasPrefix(pullNext, "/32074986/stream/"), "Pull-Next was %q", pullNext)
	token := strings.TrimPrefix(pullNext, "/32074986/stream/")

	// The timeout token is the token the session was registered under.
	st, err := store.GetStream(context.Background(), token)
	require.NoError(t, err, "Pull-Next token must resolve to the registered stream")
	assert.Equal(t, token, st.InteractionID)
	assert.Equal(t, models.StreamActive, st.Status)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestStreamContinuation(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/msgs/32074986/2", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, server.URL+"/32074986/stream/start", "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var first models.PixMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&first))
	next := resp.Header.Get("Pull-Next")

	// Continuation delivers the remaining message.
	resp = doRequest(t, http.MethodGet, server.URL+next, "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var second models.PixMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&second))
	assert.NotEqual(t, first.EndToEndId, second.EndToEndId)
	next = resp.Header.Get("Pull-Next")

	// Drained: the continuation times out and repeats the same token.
	resp = doRequest(t, http.MethodGet, server.URL+next, "application/json")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, next, resp.Header.Get("Pull-Next"))
}

func TestStreamCapacity(t *testing.T) {
	server, _ := setupTestServer(t)

	var tokens []string
	for i := 0; i < 6; i++ {
		resp := doRequest(t, http.MethodGet, server.URL+"/32074986/stream/start", "application/json")
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		tokens = append(tokens, resp.Header.Get("Pull-Next"))
	}

	resp := doRequest(t, http.MethodGet, server.URL+"/32074986/stream/start", "application/json")
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// Finalizing one stream frees a slot.
	resp = doRequest(t, http.MethodDelete, server.URL+tokens[0], "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, server.URL+"/32074986/stream/start", "application/json")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHello(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := doRequest(t, http.MethodGet, server.URL+"/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Hello World!", string(body))
}
