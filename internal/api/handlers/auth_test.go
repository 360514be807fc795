package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dom/college-tracker/internal/api/handlers"
	"github.com/dom/college-tracker/internal/api/middleware"
	"github.com/dom/college-tracker/internal/auth"
	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, client *http.Client, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := client.Post(url, "application/json", bytes.NewBuffer(data))
	require.NoError(t, err)
	return resp
}

func TestAuthHandler_Register(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		request        map[string]string
		setup          func()
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name: "successful registration",
			request: map[string]string{
				"email":     "new@example.com",
				"password":  "password123",
				"firstName": "New",
				"lastName":  "Student",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result testutil.AuthResponse
				testutil.AssertJSONResponse(t, resp, &result)
				assert.Equal(t, "new@example.com", result.User.Email)
				assert.Equal(t, "student", result.User.Role)
				assert.NotEmpty(t, result.Token)
			},
		},
		{
			name: "invalid email",
			request: map[string]string{
				"email":     "not-an-email",
				"password":  "password123",
				"firstName": "A",
				"lastName":  "B",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "short password",
			request: map[string]string{
				"email":     "short@example.com",
				"password":  "abc",
				"firstName": "A",
				"lastName":  "B",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown role",
			request: map[string]string{
				"email":     "role@example.com",
				"password":  "password123",
				"firstName": "A",
				"lastName":  "B",
				"role":      "principal",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate email",
			request: map[string]string{
				"email":     "existing@example.com",
				"password":  "password123",
				"firstName": "A",
				"lastName":  "B",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("existing@example.com").
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "empty request body",
			request:        map[string]string{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.DB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			resp := postJSON(t, http.DefaultClient, ts.APIURL("/auth/register"), tt.request)
			defer resp.Body.Close()

			testutil.AssertStatusCode(t, resp, tt.expectedStatus)

			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, password := testutil.NewUserBuilder().
		WithEmail("login@example.com").
		WithName("Ada", "Lovelace").
		Build(t, ts.DB.DB)

	t.Run("correct credentials", func(t *testing.T) {
		resp := postJSON(t, http.DefaultClient, ts.APIURL("/auth/login"), map[string]string{
			"email":    user.Email,
			"password": password,
		})
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var body map[string]interface{}
		testutil.AssertJSONResponse(t, resp, &body)
		assert.NotEmpty(t, body["token"])

		userBody, ok := body["user"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, user.ID.String(), userBody["id"])
		assert.Equal(t, "login@example.com", userBody["email"])
		assert.Equal(t, "Ada", userBody["firstName"])
		assert.Equal(t, "Lovelace", userBody["lastName"])
		assert.Equal(t, "student", userBody["role"])
		assert.NotContains(t, userBody, "passwordHash")

		var sessionCookie *http.Cookie
		for _, c := range resp.Cookies() {
			if c.Name == middleware.SessionName {
				sessionCookie = c
			}
		}
		require.NotNil(t, sessionCookie, "login sets the session cookie")
		assert.True(t, sessionCookie.HttpOnly)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := postJSON(t, http.DefaultClient, ts.APIURL("/auth/login"), map[string]string{
			"email":    user.Email,
			"password": "wrong-password",
		})
		defer resp.Body.Close()

		body := testutil.AssertMessageResponse(t, resp, http.StatusUnauthorized, "Invalid credentials")
		assert.NotContains(t, body, "token")
		assert.Empty(t, resp.Cookies())
	})

	t.Run("unknown email looks the same as a wrong password", func(t *testing.T) {
		resp := postJSON(t, http.DefaultClient, ts.APIURL("/auth/login"), map[string]string{
			"email":    "nobody@example.com",
			"password": password,
		})
		defer resp.Body.Close()

		testutil.AssertMessageResponse(t, resp, http.StatusUnauthorized, "Invalid credentials")
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := postJSON(t, http.DefaultClient, ts.APIURL("/auth/login"), map[string]string{
			"email": user.Email,
		})
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, token := testutil.NewUserBuilder().
		WithEmail("me@example.com").
		WithName("Grace", "Hopper").
		BuildAndAuthenticate(t, ts)

	t.Run("bearer token", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/auth/me"), nil, token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var profile handlers.UserProfile
		testutil.AssertJSONResponse(t, resp, &profile)
		assert.Equal(t, user.ID.String(), profile.ID)
		assert.Equal(t, "me@example.com", profile.Email)
		assert.Equal(t, "Grace", profile.FirstName)
		assert.Equal(t, "Hopper", profile.LastName)
		assert.Equal(t, "student", profile.Role)

		// same shape as the dashboard timestamps: UTC with milliseconds
		assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`, profile.CreatedAt)
		createdAt, err := time.Parse(time.RFC3339, profile.CreatedAt)
		require.NoError(t, err)
		assert.WithinDuration(t, user.CreatedAt, createdAt, time.Millisecond)
	})

	t.Run("bearer token one second past expiry", func(t *testing.T) {
		cfg := ts.Config
		issuedAt := time.Now().Add(-cfg.BearerTokenTTL - time.Second)
		expired, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, auth.AudienceBearer, cfg.BearerTokenTTL).
			WithClock(func() time.Time { return issuedAt }).
			Issue(user.Identity())
		require.NoError(t, err)

		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/auth/me"), nil, expired)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Invalid or expired token")
	})

	t.Run("session token in the authorization header", func(t *testing.T) {
		cfg := ts.Config
		sessionToken, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, auth.AudienceSession, cfg.SessionTokenTTL).
			IssueWithProfile(user.Identity())
		require.NoError(t, err)

		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/auth/me"), nil, sessionToken)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Invalid or expired token")
	})

	t.Run("no credentials", func(t *testing.T) {
		resp, err := http.Get(ts.APIURL("/auth/me"))
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Authentication required")
	})

	t.Run("malformed authorization header", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/auth/me"), nil, "")
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	t.Run("token for a deleted user", func(t *testing.T) {
		ghost := &domain.User{ID: uuid.New(), Email: "ghost@example.com", Role: domain.UserRoleStudent}
		ghostToken, err := auth.NewTokenIssuer(ts.Config.JWTSecret, ts.Config.JWTIssuer, auth.AudienceBearer, time.Hour).Issue(ghost.Identity())
		require.NoError(t, err)

		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/auth/me"), nil, ghostToken)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "User not found")
	})
}

func TestAuthHandler_SessionCookie(t *testing.T) {
	ts := testutil.NewTestServer(t)
	client := ts.CookieClient(t)

	user, password := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	resp := postJSON(t, client, ts.APIURL("/auth/login"), map[string]string{
		"email":    user.Email,
		"password": password,
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("cookie alone authenticates", func(t *testing.T) {
		resp, err := client.Get(ts.APIURL("/auth/me"))
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var profile handlers.UserProfile
		testutil.AssertJSONResponse(t, resp, &profile)
		assert.Equal(t, user.ID.String(), profile.ID)
	})

	t.Run("bearer header takes precedence over the cookie", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/auth/me"), nil, "garbage")
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	t.Run("logout clears the cookie", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/auth/logout"), nil, "")
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusNoContent)

		resp, err = client.Get(ts.APIURL("/auth/me"))
		require.NoError(t, err)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})
}
