package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dom/college-tracker/internal/api/handlers"
	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileHandler_Update(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, token := testutil.NewUserBuilder().WithName("Before", "Edit").BuildAndAuthenticate(t, ts)
	_, parentToken := testutil.NewUserBuilder().WithRole(domain.UserRoleParent).BuildAndAuthenticate(t, ts)

	t.Run("update name and picture", func(t *testing.T) {
		resp := doRequest(t, http.MethodPatch, ts.APIURL("/auth/me"), map[string]string{
			"firstName":       "After",
			"profileImageUrl": "https://cdn.example.com/after.png",
		}, token)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var profile handlers.UserProfile
		testutil.AssertJSONResponse(t, resp, &profile)
		assert.Equal(t, "After", profile.FirstName)
		assert.Equal(t, "Edit", profile.LastName)
		require.NotNil(t, profile.ProfileImageURL)
	})

	t.Run("me reflects the change", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, ts.APIURL("/auth/me"), nil, token)
		defer resp.Body.Close()

		var profile handlers.UserProfile
		testutil.AssertJSONResponse(t, resp, &profile)
		assert.Equal(t, "After", profile.FirstName)
	})

	t.Run("any role may edit their profile", func(t *testing.T) {
		resp := doRequest(t, http.MethodPatch, ts.APIURL("/auth/me"), map[string]string{"lastName": "Guardian"}, parentToken)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)
	})

	t.Run("invalid picture", func(t *testing.T) {
		resp := doRequest(t, http.MethodPatch, ts.APIURL("/auth/me"), map[string]string{"profileImageUrl": "ftp://x"}, token)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})

	t.Run("anonymous", func(t *testing.T) {
		resp := doRequest(t, http.MethodPatch, ts.APIURL("/auth/me"), map[string]string{"firstName": "X"}, "")
		defer resp.Body.Close()

		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Authentication required")
	})
}
