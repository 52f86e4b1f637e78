package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ssukssuk/planterm/internal/api"
	"github.com/ssukssuk/planterm/internal/storage"
	"github.com/ssukssuk/planterm/tests/testutil"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, success bool, data interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]interface{}{"success": success}
	if data != nil {
		body["data"] = data
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func newClient(t *testing.T, baseURL string, store storage.Storage) *api.Client {
	t.Helper()
	return api.NewClient(baseURL, 5*time.Second, store, zap.NewNop())
}

func seedTokens(t *testing.T, store storage.Storage, access, refresh string) {
	t.Helper()
	require.NoError(t, store.Set(storage.KeyAccessToken, access))
	if refresh != "" {
		require.NoError(t, store.Set(storage.KeyRefreshToken, refresh))
	}
}

func TestRequestAttachesBearerToken(t *testing.T) {
	store := testutil.NewTestStorage(t)
	seedTokens(t, store, "tok-1", "")

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(t, w, http.StatusOK, true, map[string]int{"plantId": 1})
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, store)
	var out struct {
		PlantID int `json:"plantId"`
	}
	require.NoError(t, client.Get(context.Background(), "/home", &out))
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, 1, out.PlantID)
}

func TestRefreshAndReplayIsTransparent(t *testing.T) {
	store := testutil.NewTestStorage(t)
	seedTokens(t, store, "stale", "refresh-1")

	var refreshCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			atomic.AddInt32(&refreshCalls, 1)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "refresh-1", body["refreshToken"])
			writeEnvelope(t, w, http.StatusOK, true, map[string]string{
				"accessToken":  "fresh",
				"refreshToken": "refresh-2",
			})
		default:
			if r.Header.Get("Authorization") != "Bearer fresh" {
				writeEnvelope(t, w, http.StatusUnauthorized, false, nil)
				return
			}
			writeEnvelope(t, w, http.StatusOK, true, map[string]string{"plantName": "basil"})
		}
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, store)
	var out struct {
		PlantName string `json:"plantName"`
	}
	require.NoError(t, client.Get(context.Background(), "/home", &out))

	assert.Equal(t, "basil", out.PlantName)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))

	access, err := store.Get(storage.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "fresh", access)

	rotated, err := store.Get(storage.KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh-2", rotated)
}

func TestRefreshWithoutRotationKeepsOldRefreshToken(t *testing.T) {
	store := testutil.NewTestStorage(t)
	seedTokens(t, store, "stale", "refresh-1")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			writeEnvelope(t, w, http.StatusOK, true, map[string]string{
				"accessToken": "fresh",
			})
			return
		}
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeEnvelope(t, w, http.StatusUnauthorized, false, nil)
			return
		}
		writeEnvelope(t, w, http.StatusOK, true, nil)
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, store)
	require.NoError(t, client.Get(context.Background(), "/home", nil))

	refresh, err := store.Get(storage.KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", refresh)
}

func TestMissingRefreshTokenPropagatesOriginalError(t *testing.T) {
	store := testutil.NewTestStorage(t)
	seedTokens(t, store, "stale", "")
	require.NoError(t, store.Set(storage.KeySavedEmail, "me@example.com"))

	var refreshCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			atomic.AddInt32(&refreshCalls, 1)
		}
		writeEnvelope(t, w, http.StatusUnauthorized, false, nil)
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, store)
	err := client.Get(context.Background(), "/home", nil)

	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.False(t, errors.Is(err, api.ErrSessionExpired))
	assert.Equal(t, int32(0), atomic.LoadInt32(&refreshCalls))

	// Stored state is untouched when there is nothing to recover with.
	access, err := store.Get(storage.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "stale", access)

	email, err := store.Get(storage.KeySavedEmail)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", email)
}

func TestRejectedRefreshExpiresSession(t *testing.T) {
	store := testutil.NewTestStorage(t)
	seedTokens(t, store, "stale", "refresh-1")
	require.NoError(t, store.Set(storage.KeySavedEmail, "me@example.com"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusUnauthorized, false, nil)
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, store)
	err := client.Get(context.Background(), "/home", nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrSessionExpired))

	for _, key := range []string{
		storage.KeyAccessToken,
		storage.KeyRefreshToken,
		storage.KeySavedEmail,
	} {
		_, err := store.Get(key)
		assert.ErrorIs(t, err, storage.ErrNotFound, "key %s should be cleared", key)
	}
}

func TestReplayedRequestIsNotRetriedTwice(t *testing.T) {
	store := testutil.NewTestStorage(t)
	seedTokens(t, store, "stale", "refresh-1")

	var refreshCalls, homeCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			atomic.AddInt32(&refreshCalls, 1)
			writeEnvelope(t, w, http.StatusOK, true, map[string]string{"accessToken": "fresh"})
			return
		}
		atomic.AddInt32(&homeCalls, 1)
		// Reject even the replayed request.
		writeEnvelope(t, w, http.StatusUnauthorized, false, nil)
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, store)
	err := client.Get(context.Background(), "/home", nil)

	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
	assert.Equal(t, int32(2), atomic.LoadInt32(&homeCalls))
}

func TestConcurrentExpiriesShareOneRefresh(t *testing.T) {
	store := testutil.NewTestStorage(t)
	seedTokens(t, store, "stale", "refresh-1")

	var refreshCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			atomic.AddInt32(&refreshCalls, 1)
			// Hold the refresh open so concurrent 401 handlers pile up
			// behind it.
			time.Sleep(100 * time.Millisecond)
			writeEnvelope(t, w, http.StatusOK, true, map[string]string{"accessToken": "fresh"})
			return
		}
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeEnvelope(t, w, http.StatusUnauthorized, false, nil)
			return
		}
		writeEnvelope(t, w, http.StatusOK, true, nil)
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, store)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.Get(context.Background(), "/home", nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "request %d", i)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
}

func TestLoginPersistsCredentialsAndRememberedEmail(t *testing.T) {
	store := testutil.NewTestStorage(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		writeEnvelope(t, w, http.StatusOK, true, map[string]string{
			"accessToken":  "tok",
			"refreshToken": "ref",
		})
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, store)
	require.NoError(t, client.Login(context.Background(), "me@example.com", "hunter22", true))

	access, err := store.Get(storage.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", access)

	email, err := store.Get(storage.KeySavedEmail)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", email)
	assert.True(t, client.LoggedIn())
}

func TestLogoutKeepsRememberedEmail(t *testing.T) {
	store := testutil.NewTestStorage(t)
	seedTokens(t, store, "tok", "ref")
	require.NoError(t, store.Set(storage.KeySavedEmail, "me@example.com"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusOK, true, nil)
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, store)
	require.NoError(t, client.Logout(context.Background()))

	_, err := store.Get(storage.KeyAccessToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.Get(storage.KeyRefreshToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	email, err := store.Get(storage.KeySavedEmail)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", email)
	assert.False(t, client.LoggedIn())
}

func TestEnvelopeFailureBecomesAPIError(t *testing.T) {
	store := testutil.NewTestStorage(t)
	seedTokens(t, store, "tok", "")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":false,"message":"plant not found"}`))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, store)
	err := client.Get(context.Background(), "/plants/7", nil)

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "plant not found", apiErr.Message)
}

func TestFailureEnvelopeRejectsResultlessCommands(t *testing.T) {
	store := testutil.NewTestStorage(t)
	seedTokens(t, store, "tok", "")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":false,"message":"nickname already taken"}`))
	}))
	defer srv.Close()

	// UpdateNickname discards the payload; the failure flag must still
	// surface as an error.
	client := newClient(t, srv.URL, store)
	err := client.UpdateNickname(context.Background(), "sprout")

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "nickname already taken", apiErr.Message)
}

func TestEmptyBodyResponseIsSuccess(t *testing.T) {
	store := testutil.NewTestStorage(t)
	seedTokens(t, store, "tok", "")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, store)
	assert.NoError(t, client.Get(context.Background(), "/plants/7", nil))
}
