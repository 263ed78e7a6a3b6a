package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	a := newTestAPI(t)

	token := a.login(t, "ann@x.com")

	r := a.do(t, http.MethodGet, "/api/validate", nil, token)
	assert.Equal(t, http.StatusOK, r.Code)

	r = a.do(t, http.MethodGet, "/api/users/me", nil, token)
	require.Equal(t, http.StatusOK, r.Code)

	var me map[string]any
	r.decode(t, &me)
	assert.Equal(t, "ann@x.com", me["email"])
	assert.Equal(t, "Ann", me["name"])
	assert.NotContains(t, me, "passwordHash")
	assert.NotContains(t, me, "PasswordHash")

	r = a.do(t, http.MethodPost, "/api/auth/logout", nil, token)
	assert.Equal(t, http.StatusOK, r.Code)

	r = a.do(t, http.MethodGet, "/api/validate", nil, token)
	assert.Equal(t, http.StatusUnauthorized, r.Code)
	assert.Equal(t, "INVALID_TOKEN", r.errorCode(t))
}

func TestVerifyLoginResponse(t *testing.T) {
	a := newTestAPI(t)
	a.login(t, "ann@x.com")

	r := a.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "ann@x.com", "password": "pw123456"}, "")
	require.Equal(t, http.StatusOK, r.Code)

	r = a.do(t, http.MethodPost, "/api/auth/verify-login", gin.H{"email": "ann@x.com", "code": a.mailer.code("ann@x.com")}, "")
	require.Equal(t, http.StatusOK, r.Code)

	var body struct {
		Message string         `json:"message"`
		Token   string         `json:"token"`
		User    map[string]any `json:"user"`
	}
	r.decode(t, &body)

	assert.Equal(t, "Login successful", body.Message)
	assert.NotEmpty(t, body.Token)
	assert.ElementsMatch(t, []string{"id", "name", "email", "createdAt"}, keys(body.User))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	return out
}

func TestSecondLoginInvalidatesFirstToken(t *testing.T) {
	a := newTestAPI(t)
	first := a.login(t, "ann@x.com")

	r := a.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "ann@x.com", "password": "pw123456"}, "")
	require.Equal(t, http.StatusOK, r.Code)

	r = a.do(t, http.MethodPost, "/api/auth/verify-login", gin.H{"email": "ann@x.com", "code": a.mailer.code("ann@x.com")}, "")
	require.Equal(t, http.StatusOK, r.Code)

	r = a.do(t, http.MethodGet, "/api/validate", nil, first)
	assert.Equal(t, http.StatusUnauthorized, r.Code)
	assert.Equal(t, "INVALID_TOKEN", r.errorCode(t))
}

func TestRegisterErrors(t *testing.T) {
	a := newTestAPI(t)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"bad email", gin.H{"name": "Ann", "email": "nope", "password": "pw123456"}, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"short password", gin.H{"name": "Ann", "email": "ann@x.com", "password": "pw"}, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"no name", gin.H{"email": "ann@x.com", "password": "pw123456"}, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"not json", "[", http.StatusBadRequest, "VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := a.do(t, http.MethodPost, "/api/auth/register", tt.body, "")
			assert.Equal(t, tt.status, r.Code)
			assert.Equal(t, tt.code, r.errorCode(t))
		})
	}

	r := a.do(t, http.MethodPost, "/api/auth/register", gin.H{"name": "Ann", "email": "ann@x.com", "password": "pw123456"}, "")
	require.Equal(t, http.StatusOK, r.Code)

	r = a.do(t, http.MethodPost, "/api/auth/register", gin.H{"name": "Ann", "email": "ann@x.com", "password": "pw123456"}, "")
	assert.Equal(t, http.StatusConflict, r.Code)
	assert.Equal(t, "DUPLICATE_EMAIL", r.errorCode(t))
}

func TestRegisterMailFailure(t *testing.T) {
	a := newTestAPI(t)
	a.mailer.fail = true

	body := gin.H{"name": "Ann", "email": "ann@x.com", "password": "pw123456"}

	r := a.do(t, http.MethodPost, "/api/auth/register", body, "")
	assert.Equal(t, http.StatusBadGateway, r.Code)
	assert.Equal(t, "EMAIL_DELIVERY_FAILED", r.errorCode(t))

	a.mailer.fail = false

	r = a.do(t, http.MethodPost, "/api/auth/register", body, "")
	assert.Equal(t, http.StatusOK, r.Code)
}

func TestLoginErrors(t *testing.T) {
	a := newTestAPI(t)

	r := a.do(t, http.MethodPost, "/api/auth/register", gin.H{"name": "Ann", "email": "ann@x.com", "password": "pw123456"}, "")
	require.Equal(t, http.StatusOK, r.Code)

	r = a.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "ann@x.com", "password": "pw123456"}, "")
	assert.Equal(t, http.StatusForbidden, r.Code)
	assert.Equal(t, "UNVERIFIED_ACCOUNT", r.errorCode(t))

	r = a.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "ann@x.com", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, r.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", r.errorCode(t))

	r = a.do(t, http.MethodPost, "/api/auth/verify-email", gin.H{"email": "ann@x.com", "code": "000000"}, "")
	assert.Equal(t, http.StatusBadRequest, r.Code)
	assert.Equal(t, "INVALID_OR_EXPIRED_CODE", r.errorCode(t))

	r = a.do(t, http.MethodPost, "/api/auth/verify-login", gin.H{"email": "ann@x.com", "code": "000000"}, "")
	assert.Equal(t, http.StatusBadRequest, r.Code)
	assert.Equal(t, "INVALID_OR_EXPIRED_CODE", r.errorCode(t))
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	a := newTestAPI(t)

	for _, path := range []string{"/api/validate", "/api/users/me", "/api/courses/mine"} {
		r := a.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, r.Code, path)
		assert.Equal(t, "UNAUTHENTICATED", r.errorCode(t), path)
	}

	r := a.do(t, http.MethodGet, "/api/users/me", nil, "garbage")
	assert.Equal(t, "INVALID_TOKEN", r.errorCode(t))
}

func TestUserUpdateAndDelete(t *testing.T) {
	a := newTestAPI(t)
	token := a.login(t, "ann@x.com")

	r := a.do(t, http.MethodPatch, "/api/users/me", gin.H{"name": "Ann Lee"}, token)
	require.Equal(t, http.StatusOK, r.Code, r.Body.String())

	var me map[string]any
	r.decode(t, &me)
	assert.Equal(t, "Ann Lee", me["name"])

	r = a.do(t, http.MethodPatch, "/api/users/me", gin.H{"password": "short"}, token)
	assert.Equal(t, http.StatusBadRequest, r.Code)

	r = a.do(t, http.MethodPatch, "/api/users/me", gin.H{"password": "new-password"}, token)
	require.Equal(t, http.StatusOK, r.Code)

	r = a.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "ann@x.com", "password": "new-password"}, "")
	assert.Equal(t, http.StatusOK, r.Code)

	r = a.do(t, http.MethodDelete, "/api/users/me", nil, token)
	require.Equal(t, http.StatusOK, r.Code)

	r = a.do(t, http.MethodGet, "/api/validate", nil, token)
	assert.Equal(t, "INVALID_TOKEN", r.errorCode(t))
}

func TestHeartbeat(t *testing.T) {
	a := newTestAPI(t)

	r := a.do(t, http.MethodHead, "/api/heartbeat", nil, "")
	assert.Equal(t, http.StatusOK, r.Code)
	assert.NotEmpty(t, r.Header().Get("X-Request-ID"))
}
