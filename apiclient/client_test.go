package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starack/admin-console/apiclient"
	apperrors "github.com/starack/admin-console/internal/errors"
	"github.com/starack/admin-console/token"
	tokenrepofake "github.com/starack/admin-console/token/repofake"
)

// fixture wires a resource backend stub and a user-service stub (for the
// refresh endpoint) to one Client.
type fixture struct {
	tokens       *tokenrepofake.FakeTokenRepo
	client       *apiclient.Client
	resource     *httptest.Server
	userService  *httptest.Server
	refreshCalls *atomic.Int64
	loggedOut    *atomic.Int64
}

func setup(t *testing.T, resourceHandler http.HandlerFunc, refreshHandler http.HandlerFunc) *fixture {
	t.Helper()

	refreshCalls := &atomic.Int64{}
	loggedOut := &atomic.Int64{}

	userService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			refreshCalls.Add(1)
			refreshHandler(w, r)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(userService.Close)

	resource := httptest.NewServer(resourceHandler)
	t.Cleanup(resource.Close)

	tokens := tokenrepofake.NewFakeTokenRepo()
	client := apiclient.New(resource.URL, userService.URL, tokens,
		apiclient.WithForcedLogoutHandler(func() { loggedOut.Add(1) }),
	)

	return &fixture{
		tokens:       tokens,
		client:       client,
		resource:     resource,
		userService:  userService,
		refreshCalls: refreshCalls,
		loggedOut:    loggedOut,
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestAttachesBearerToken(t *testing.T) {
	var gotAuth string
	f := setup(t,
		func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			respondJSON(w, http.StatusOK, map[string]string{"ok": "true"})
		},
		func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("refresh must not be called")
		},
	)
	require.NoError(t, f.tokens.SetPair(token.Pair{AccessToken: "access-1", RefreshToken: "refresh-1"}))

	var out map[string]string
	require.NoError(t, f.client.Get(context.Background(), "/user", nil, &out))
	require.Equal(t, "Bearer access-1", gotAuth)
	require.Equal(t, "true", out["ok"])
}

func TestNoTokenSendsNoHeader(t *testing.T) {
	var hadAuth bool
	f := setup(t,
		func(w http.ResponseWriter, r *http.Request) {
			hadAuth = r.Header.Get("Authorization") != ""
			respondJSON(w, http.StatusOK, map[string]string{})
		},
		func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("refresh must not be called")
		},
	)

	require.NoError(t, f.client.Get(context.Background(), "/user", nil, nil))
	require.False(t, hadAuth)
}

func TestRefreshAndRetryTransparently(t *testing.T) {
	resourceCalls := &atomic.Int64{}
	f := setup(t,
		func(w http.ResponseWriter, r *http.Request) {
			if resourceCalls.Add(1) == 1 {
				respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
				return
			}
			require.Equal(t, "Bearer access-2", r.Header.Get("Authorization"))
			respondJSON(w, http.StatusOK, map[string]int{"total": 7})
		},
		func(w http.ResponseWriter, r *http.Request) {
			var payload map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			require.Equal(t, "refresh-1", payload["refresh"])
			respondJSON(w, http.StatusOK, map[string]string{"accessToken": "access-2"})
		},
	)
	require.NoError(t, f.tokens.SetPair(token.Pair{AccessToken: "access-1", RefreshToken: "refresh-1"}))

	var out map[string]int
	require.NoError(t, f.client.Get(context.Background(), "/task", nil, &out))
	require.Equal(t, 7, out["total"])
	require.EqualValues(t, 2, resourceCalls.Load())
	require.EqualValues(t, 1, f.refreshCalls.Load())

	// Refresh replaces only the access token; the refresh token is not
	// rotated.
	accessToken, ok := f.tokens.AccessToken()
	require.True(t, ok)
	require.Equal(t, "access-2", accessToken)
	refreshToken, ok := f.tokens.RefreshToken()
	require.True(t, ok)
	require.Equal(t, "refresh-1", refreshToken)
	require.EqualValues(t, 0, f.loggedOut.Load())
}

func TestAtMostOneRetry(t *testing.T) {
	resourceCalls := &atomic.Int64{}
	f := setup(t,
		func(w http.ResponseWriter, r *http.Request) {
			resourceCalls.Add(1)
			respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "still expired"})
		},
		func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"accessToken": "access-2"})
		},
	)
	require.NoError(t, f.tokens.SetPair(token.Pair{AccessToken: "access-1", RefreshToken: "refresh-1"}))

	err := f.client.Get(context.Background(), "/task", nil, nil)
	require.Error(t, err)

	var backendErr *apperrors.BackendError
	require.ErrorAs(t, err, &backendErr)
	require.Equal(t, http.StatusUnauthorized, backendErr.StatusCode)

	// Exactly one refresh and one resubmission, then a terminal failure.
	require.EqualValues(t, 2, resourceCalls.Load())
	require.EqualValues(t, 1, f.refreshCalls.Load())
}

func TestLoginAndRefreshExemptFromRecovery(t *testing.T) {
	for _, path := range []string{"/auth/login", "/auth/refresh"} {
		t.Run(path, func(t *testing.T) {
			f := setup(t,
				func(w http.ResponseWriter, r *http.Request) {
					respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "bad credentials"})
				},
				func(w http.ResponseWriter, r *http.Request) {
					t.Fatal("refresh must not be called")
				},
			)
			require.NoError(t, f.tokens.SetPair(token.Pair{AccessToken: "access-1", RefreshToken: "refresh-1"}))

			err := f.client.Post(context.Background(), path, map[string]string{}, nil)
			require.Error(t, err)

			var backendErr *apperrors.BackendError
			require.ErrorAs(t, err, &backendErr)
			require.Equal(t, http.StatusUnauthorized, backendErr.StatusCode)
			require.Equal(t, "bad credentials", backendErr.Message)
			require.EqualValues(t, 0, f.refreshCalls.Load())
		})
	}
}

func TestMissingRefreshTokenForcesLogout(t *testing.T) {
	f := setup(t,
		func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
		},
		func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("refresh must not be called without a refresh token")
		},
	)
	require.NoError(t, f.tokens.SetAccessToken("access-1"))

	err := f.client.Get(context.Background(), "/project", nil, nil)
	require.Error(t, err)

	// The original 401 propagates; both keys are gone and the redirect ran.
	var backendErr *apperrors.BackendError
	require.ErrorAs(t, err, &backendErr)
	require.Equal(t, "token expired", backendErr.Message)

	_, hasAccess := f.tokens.AccessToken()
	_, hasRefresh := f.tokens.RefreshToken()
	require.False(t, hasAccess)
	require.False(t, hasRefresh)
	require.EqualValues(t, 1, f.loggedOut.Load())
}

func TestFailedRefreshForcesLogout(t *testing.T) {
	f := setup(t,
		func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
		},
		func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "refresh expired"})
		},
	)
	require.NoError(t, f.tokens.SetPair(token.Pair{AccessToken: "access-1", RefreshToken: "refresh-1"}))

	err := f.client.Get(context.Background(), "/project", nil, nil)
	require.Error(t, err)

	// The refresh error propagates, not the original 401.
	require.ErrorIs(t, err, apperrors.ErrRefreshFailed)
	require.EqualValues(t, 1, f.refreshCalls.Load())

	_, hasAccess := f.tokens.AccessToken()
	_, hasRefresh := f.tokens.RefreshToken()
	require.False(t, hasAccess)
	require.False(t, hasRefresh)
	require.EqualValues(t, 1, f.loggedOut.Load())
}

func TestBackendErrorMessage(t *testing.T) {
	f := setup(t,
		func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusBadRequest, map[string]string{"message": "title is required"})
		},
		func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("refresh must not be called")
		},
	)

	err := f.client.Post(context.Background(), "/task", map[string]string{}, nil)
	var backendErr *apperrors.BackendError
	require.ErrorAs(t, err, &backendErr)
	require.Equal(t, http.StatusBadRequest, backendErr.StatusCode)
	require.Equal(t, "title is required", backendErr.Message)
}

func TestSkip(t *testing.T) {
	require.Equal(t, 0, apiclient.Skip(1, 10))
	require.Equal(t, 10, apiclient.Skip(2, 10))
	require.Equal(t, 45, apiclient.Skip(10, 5))
	require.Equal(t, 0, apiclient.Skip(0, 10))
}
