package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mayasama5/upe-program-sub001/internal/auth"
	"github.com/mayasama5/upe-program-sub001/internal/auth/resolver"
	"github.com/mayasama5/upe-program-sub001/internal/auth/token"
	"github.com/mayasama5/upe-program-sub001/internal/store"
)

// fakeSessionVerifier accepts a fixed set of tokens.
type fakeSessionVerifier struct {
	identities map[string]*auth.Identity
}

func (f *fakeSessionVerifier) VerifySession(ctx context.Context, rawToken string) (*auth.Identity, error) {
	identity, ok := f.identities[rawToken]
	if !ok {
		return nil, errors.New("verification failed")
	}
	return identity, nil
}

type testEnv struct {
	users    *store.MemoryStore
	tokens   *token.Service
	sessions *fakeSessionVerifier
	mw       *AuthMiddleware
}

func newTestEnv() *testEnv {
	users := store.NewMemoryStore()
	tokens := token.NewService("test-secret", time.Hour, 24*time.Hour)
	sessions := &fakeSessionVerifier{identities: map[string]*auth.Identity{}}
	res := resolver.NewStoreResolver(users)
	return &testEnv{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		mw:       NewAuthMiddleware(sessions, tokens, res),
	}
}

// whoami reports the resolved principal so tests can observe the
// outcome of resolution without guards in the way.
func whoami(c *gin.Context) {
	if p, ok := PrincipalFromContext(c.Request.Context()); ok {
		c.JSON(http.StatusOK, gin.H{"subject": p.SubjectID, "role": string(p.Role)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject": nil})
}

func do(r *gin.Engine, cookie, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/whoami", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: cookie})
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestSessionAuthNoCredentialIsAnonymous(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	r := gin.New()
	r.GET("/whoami", env.mw.SessionAuth(), whoami)

	rec := do(r, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want request to proceed", rec.Code)
	}
	if body := decode(t, rec); body["subject"] != nil {
		t.Errorf("expected anonymous, got %v", body["subject"])
	}
}

func TestSessionAuthInvalidTokenDegradesToAnonymous(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	r := gin.New()
	r.GET("/whoami", env.mw.SessionAuth(), whoami)

	rec := do(r, "expired-or-garbage", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, provider failures must fail open", rec.Code)
	}
	if body := decode(t, rec); body["subject"] != nil {
		t.Errorf("expected anonymous, got %v", body["subject"])
	}
}

func TestSessionAuthMaterializesAndAttachesPrincipal(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.sessions.identities["good-session"] = &auth.Identity{
		SubjectID:     "prov-1",
		Email:         "ana@example.com",
		EmailVerified: true,
		Role:          auth.RoleCompany,
	}
	r := gin.New()
	r.GET("/whoami", env.mw.SessionAuth(), whoami)

	rec := do(r, "good-session", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["subject"] != "prov-1" || body["role"] != "empresa" {
		t.Errorf("principal: got %v", body)
	}

	if _, err := env.users.FindByID(context.Background(), "prov-1"); err != nil {
		t.Errorf("first sight should have materialized a record: %v", err)
	}
}

func TestSessionAuthBearerFallback(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.sessions.identities["hdr-session"] = &auth.Identity{
		SubjectID: "prov-2",
		Email:     "luis@example.com",
	}
	r := gin.New()
	r.GET("/whoami", env.mw.SessionAuth(), whoami)

	rec := do(r, "", "hdr-session")
	if body := decode(t, rec); body["subject"] != "prov-2" {
		t.Errorf("principal: got %v", body)
	}
}

func TestTokenAuthMandatoryNoCredential(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	r := gin.New()
	r.GET("/whoami", env.mw.TokenAuth(true), whoami)

	rec := do(r, "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d", rec.Code)
	}
	if body := decode(t, rec); body["code"] != "NOT_AUTHENTICATED" {
		t.Errorf("code: got %v", body["code"])
	}
}

func TestTokenAuthMandatoryExpired(t *testing.T) {
	t.Parallel()

	env := newTestEnv()

	past := time.Now().Add(-48 * time.Hour)
	stale := token.NewService("test-secret", time.Hour, 24*time.Hour).
		WithClock(func() time.Time { return past })
	expired, err := stale.IssueAccess(&store.User{ID: "u1", Role: auth.RoleStudent})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := gin.New()
	r.GET("/whoami", env.mw.TokenAuth(true), whoami)

	rec := do(r, "", expired)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d", rec.Code)
	}
	if body := decode(t, rec); body["code"] != "TOKEN_EXPIRED" {
		t.Errorf("code: got %v", body["code"])
	}
}

func TestTokenAuthMandatoryTampered(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	r := gin.New()
	r.GET("/whoami", env.mw.TokenAuth(true), whoami)

	rec := do(r, "", "aaaa.bbbb.cccc")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d", rec.Code)
	}
	if body := decode(t, rec); body["code"] != "TOKEN_INVALID" {
		t.Errorf("code: got %v", body["code"])
	}
}

func TestTokenAuthMandatoryUnknownSubject(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	good, err := env.tokens.IssueAccess(&store.User{ID: "ghost", Role: auth.RoleStudent})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := gin.New()
	r.GET("/whoami", env.mw.TokenAuth(true), whoami)

	rec := do(r, "", good)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, local path must not provision", rec.Code)
	}
	if body := decode(t, rec); body["code"] != "NOT_AUTHENTICATED" {
		t.Errorf("code: got %v", body["code"])
	}
}

func TestTokenAuthMandatoryResolvesFromStore(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	if err := env.users.Create(context.Background(), &store.User{
		ID:    "u7",
		Email: "u7@example.com",
		Role:  auth.RoleStudent,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Token minted before a role change: the stored role must win.
	tok, err := env.tokens.IssueAccess(&store.User{ID: "u7", Role: auth.RoleStudent})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := env.users.UpdateRole(context.Background(), "u7", auth.RoleAdmin); err != nil {
		t.Fatalf("update role: %v", err)
	}

	r := gin.New()
	r.GET("/whoami", env.mw.TokenAuth(true), whoami)

	rec := do(r, "", tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["subject"] != "u7" || body["role"] != "admin" {
		t.Errorf("principal: got %v", body)
	}
}

func TestTokenAuthOptionalBadTokenDegradesToAnonymous(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	r := gin.New()
	r.GET("/whoami", env.mw.TokenAuth(false), whoami)

	for _, bearer := range []string{"", "garbage.token.here"} {
		rec := do(r, "", bearer)
		if rec.Code != http.StatusOK {
			t.Fatalf("bearer=%q status: got %d", bearer, rec.Code)
		}
		if body := decode(t, rec); body["subject"] != nil {
			t.Errorf("bearer=%q expected anonymous, got %v", bearer, body["subject"])
		}
	}
}
