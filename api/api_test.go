package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"

	"bitwise74/course-api/cache"
	"bitwise74/course-api/db"
	"bitwise74/course-api/security"
	"bitwise74/course-api/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var codeRe = regexp.MustCompile(`<b>(\d+)</b>`)

type fakeMailer struct {
	mu    sync.Mutex
	codes map[string]string
	fail  bool
}

func (m *fakeMailer) Send(_ context.Context, to string, mail service.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return errors.New("smtp unavailable")
	}

	if match := codeRe.FindStringSubmatch(mail.Body); match != nil {
		m.codes[to] = match[1]
	}

	return nil
}

func (m *fakeMailer) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.codes[email]
}

type testAPI struct {
	*API
	mailer *fakeMailer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	d, err := db.New("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)

	sqlDB, err := d.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	signer, err := security.NewSessionSigner("test-secret")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	mailer := &fakeMailer{codes: map[string]string{}}

	a := New(ctx, Deps{
		DB:        d,
		Signer:    signer,
		Hasher:    security.NewBcrypt(4),
		Mailer:    mailer,
		Cache:     cache.NewMemoryStore(0),
		RateLimit: 1000,
	})

	return &testAPI{API: a, mailer: mailer}
}

type response struct {
	*httptest.ResponseRecorder
}

func (r response) decode(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), dst), r.Body.String())
}

func (r response) errorCode(t *testing.T) string {
	var body map[string]any
	r.decode(t, &body)

	code, _ := body["code"].(string)
	return code
}

func (a *testAPI) do(t *testing.T, method, path string, body any, token string) response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	return response{w}
}

// login registers email and walks it through both verification steps
func (a *testAPI) login(t *testing.T, email string) string {
	t.Helper()

	r := a.do(t, http.MethodPost, "/api/auth/register", gin.H{"name": "Ann", "email": email, "password": "pw123456"}, "")
	require.Equal(t, http.StatusOK, r.Code, r.Body.String())

	r = a.do(t, http.MethodPost, "/api/auth/verify-email", gin.H{"email": email, "code": a.mailer.code(email)}, "")
	require.Equal(t, http.StatusOK, r.Code, r.Body.String())

	r = a.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": "pw123456"}, "")
	require.Equal(t, http.StatusOK, r.Code, r.Body.String())

	r = a.do(t, http.MethodPost, "/api/auth/verify-login", gin.H{"email": email, "code": a.mailer.code(email)}, "")
	require.Equal(t, http.StatusOK, r.Code, r.Body.String())

	var body struct {
		Token string `json:"token"`
	}
	r.decode(t, &body)
	require.NotEmpty(t, body.Token)

	return body.Token
}
