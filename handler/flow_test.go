// handler/flow_test.go
package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go-auth-api/model"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

// seedUser inserts a user directly into the fake store, bypassing the
// registration endpoint, so admin tests can start from a known state.
func seedUser(t *testing.T, repo *fakeUserRepo, hash, username, email string, isStaff, isSuperuser bool) *model.User {
	t.Helper()
	user := &model.User{
		Username:    username,
		Email:       email,
		Password:    hash,
		IsStaff:     isStaff,
		IsSuperuser: isSuperuser,
	}
	require.NoError(t, repo.CreateUser(user))
	return user
}

// TestAuthenticationFlow walks the whole session lifecycle: register, login,
// profile, logout, and the refusal of a blacklisted refresh token.
func TestAuthenticationFlow(t *testing.T) {
	r, _, _ := newTestStack()

	// Register alice.
	rr := doJSON(t, r, "POST", "/register", "", map[string]string{
		"username":  "alice",
		"email":     "alice@x.com",
		"password":  "password123",
		"password2": "password123",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password")
	body := decodeBody(t, rr)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, false, user["is_staff"])

	// A second registration with the same username conflicts.
	rr = doJSON(t, r, "POST", "/register", "", map[string]string{
		"username":  "alice",
		"email":     "alice2@x.com",
		"password":  "password123",
		"password2": "password123",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body = decodeBody(t, rr)
	fields := body["fields"].(map[string]interface{})
	assert.Contains(t, fields, "username")

	// Login.
	rr = doJSON(t, r, "POST", "/login", "", map[string]string{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	var pair model.TokenPair
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pair))
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	// Profile requires the access token.
	rr = doJSON(t, r, "GET", "/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doJSON(t, r, "GET", "/profile", pair.Access, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body = decodeBody(t, rr)
	assert.Equal(t, "alice", body["username"])

	// A regular user is not staff.
	rr = doJSON(t, r, "GET", "/admin/users", pair.Access, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// Logout blacklists the refresh token.
	rr = doJSON(t, r, "POST", "/logout", pair.Access, map[string]string{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, rr.Code)

	// Logging out twice is fine.
	rr = doJSON(t, r, "POST", "/logout", pair.Access, map[string]string{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusOK, rr.Code)

	// The blacklisted refresh token can never mint again.
	rr = doJSON(t, r, "POST", "/token/refresh", "", map[string]string{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestTokenRefreshRotation(t *testing.T) {
	r, repo, authService := newTestStack()

	hash, err := authService.HashPassword("password123")
	require.NoError(t, err)
	seedUser(t, repo, hash, "carol", "carol@x.com", false, false)

	rr := doJSON(t, r, "POST", "/login", "", map[string]string{
		"username": "carol",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	var pair model.TokenPair
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pair))

	// Refresh rotates the pair.
	rr = doJSON(t, r, "POST", "/token/refresh", "", map[string]string{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, rr.Code)
	var rotated model.TokenPair
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rotated))
	assert.NotEqual(t, pair.Refresh, rotated.Refresh)

	// The consumed token is now blacklisted.
	rr = doJSON(t, r, "POST", "/token/refresh", "", map[string]string{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// The rotated access token works.
	rr = doJSON(t, r, "GET", "/profile", rotated.Access, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRegisterValidation(t *testing.T) {
	r, _, _ := newTestStack()

	rr := doJSON(t, r, "POST", "/register", "", map[string]string{
		"username":  "a!",
		"email":     "not-an-email",
		"password":  "12345678",
		"password2": "different",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	body := decodeBody(t, rr)
	fields := body["fields"].(map[string]interface{})
	// Every failing field is reported, not just the first.
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "password2")
}

func TestLoginFailsGenerically(t *testing.T) {
	r, repo, authService := newTestStack()

	hash, err := authService.HashPassword("password123")
	require.NoError(t, err)
	seedUser(t, repo, hash, "dave", "dave@x.com", false, false)

	unknownUser := doJSON(t, r, "POST", "/login", "", map[string]string{
		"username": "nobody",
		"password": "password123",
	})
	wrongPassword := doJSON(t, r, "POST", "/login", "", map[string]string{
		"username": "dave",
		"password": "wrong-password",
	})

	// Same status and same body either way; no username enumeration.
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.JSONEq(t, unknownUser.Body.String(), wrongPassword.Body.String())
}

func TestLogoutInputPolicy(t *testing.T) {
	r, repo, authService := newTestStack()

	hash, err := authService.HashPassword("password123")
	require.NoError(t, err)
	user := seedUser(t, repo, hash, "erin", "erin@x.com", false, false)

	pair, err := authService.IssueTokenPair(user)
	require.NoError(t, err)

	// Missing refresh token.
	rr := doJSON(t, r, "POST", "/logout", pair.Access, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Structurally unparsable refresh token.
	rr = doJSON(t, r, "POST", "/logout", pair.Access, map[string]string{"refresh": "garbage"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Well-formed token revokes fine.
	rr = doJSON(t, r, "POST", "/logout", pair.Access, map[string]string{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAdminUserManagement(t *testing.T) {
	r, repo, authService := newTestStack()

	hash, err := authService.HashPassword("password123")
	require.NoError(t, err)

	admin := seedUser(t, repo, hash, "admin", "admin@x.com", true, false)
	root := seedUser(t, repo, hash, "root", "root@x.com", true, true)
	alice := seedUser(t, repo, hash, "alice", "alice@x.com", false, false)
	seedUser(t, repo, hash, "bob", gofakeit.Numerify("bob####@x.com"), false, false)

	adminPair, err := authService.IssueTokenPair(admin)
	require.NoError(t, err)
	token := adminPair.Access

	t.Run("list all users", func(t *testing.T) {
		rr := doJSON(t, r, "GET", "/admin/users", token, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		body := decodeBody(t, rr)
		assert.Equal(t, float64(4), body["count"])

		users := body["users"].([]interface{})
		// Newest-created first.
		first := users[0].(map[string]interface{})
		assert.Equal(t, "bob", first["username"])
	})

	t.Run("substring search across fields", func(t *testing.T) {
		rr := doJSON(t, r, "GET", "/admin/users?search=ali", token, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		body := decodeBody(t, rr)
		assert.Equal(t, float64(1), body["count"])
		users := body["users"].([]interface{})
		assert.Equal(t, "alice", users[0].(map[string]interface{})["username"])

		rr = doJSON(t, r, "GET", "/admin/users?search=zzz", token, nil)
		body = decodeBody(t, rr)
		assert.Equal(t, float64(0), body["count"])
	})

	t.Run("get single user", func(t *testing.T) {
		rr := doJSON(t, r, "GET", fmt.Sprintf("/admin/users/%d", alice.ID), token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "alice", body["username"])

		rr = doJSON(t, r, "GET", "/admin/users/9999", token, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("partial update", func(t *testing.T) {
		rr := doJSON(t, r, "PATCH", fmt.Sprintf("/admin/users/%d", alice.ID), token,
			map[string]interface{}{"first_name": "Alice", "is_staff": true})
		require.Equal(t, http.StatusOK, rr.Code)

		body := decodeBody(t, rr)
		assert.Equal(t, "Alice", body["first_name"])
		assert.Equal(t, true, body["is_staff"])
		// Untouched fields survive.
		assert.Equal(t, "alice@x.com", body["email"])
	})

	t.Run("update validation reapplied", func(t *testing.T) {
		rr := doJSON(t, r, "PATCH", fmt.Sprintf("/admin/users/%d", alice.ID), token,
			map[string]string{"email": "not-an-email"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("update conflict on taken username", func(t *testing.T) {
		rr := doJSON(t, r, "PATCH", fmt.Sprintf("/admin/users/%d", alice.ID), token,
			map[string]string{"username": "bob"})
		require.Equal(t, http.StatusBadRequest, rr.Code)
		body := decodeBody(t, rr)
		fields := body["fields"].(map[string]interface{})
		assert.Contains(t, fields, "username")
	})

	t.Run("cannot delete own account", func(t *testing.T) {
		rr := doJSON(t, r, "DELETE", fmt.Sprintf("/admin/users/%d", admin.ID), token, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("cannot delete a superuser", func(t *testing.T) {
		rr := doJSON(t, r, "DELETE", fmt.Sprintf("/admin/users/%d", root.ID), token, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("delete is hard and immediate", func(t *testing.T) {
		rr := doJSON(t, r, "DELETE", fmt.Sprintf("/admin/users/%d", alice.ID), token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.True(t, strings.Contains(body["message"].(string), "alice"))

		rr = doJSON(t, r, "GET", fmt.Sprintf("/admin/users/%d", alice.ID), token, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("delete unknown user", func(t *testing.T) {
		rr := doJSON(t, r, "DELETE", "/admin/users/9999", token, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
