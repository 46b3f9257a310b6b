package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/session"
)

// memStore is an in-memory session.Store for handler tests.
type memStore struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]*session.Session)}
}

func (m *memStore) Save(ctx context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.Token] = &cp
	return nil
}

func (m *memStore) GetByToken(ctx context.Context, token string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, session.ErrSessionExpired
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *memStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for tok, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, tok)
		}
	}
	return nil
}

func (m *memStore) DeleteExpired(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for tok, s := range m.sessions {
		if time.Now().After(s.Expiry) {
			delete(m.sessions, tok)
		}
	}
	return nil
}

func (m *memStore) has(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[token]
	return ok
}

func newTestHandler(t *testing.T) (*Handler, *mockUserRepo, *session.Controller) {
	t.Helper()
	h, users, ctrl, _ := newTestHandlerWithStore(t, time.Hour)
	return h, users, ctrl
}

func newTestHandlerWithStore(t *testing.T, tokenLifetime time.Duration) (*Handler, *mockUserRepo, *session.Controller, *memStore) {
	t.Helper()
	svc, users, _ := newTestService()
	store := newMemStore()
	issuer := session.NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), tokenLifetime)
	ctrl := session.NewController(store, svc, svc, issuer, zerolog.Nop())
	t.Cleanup(ctrl.Close)
	return NewHandler(svc, ctrl), users, ctrl, store
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, path, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestSignInHandler_Success(t *testing.T) {
	h, users, _ := newTestHandler(t)
	seedUser(t, users, "asha@clinic.example", "correct-horse-9", RoleDoctor, true, nil)

	rec := doJSON(t, h.SignIn, http.MethodPost, "/api/auth/signin",
		`{"email":"asha@clinic.example","password":"correct-horse-9"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp signInResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
	if resp.User == nil || resp.User.Email != "asha@clinic.example" {
		t.Errorf("unexpected user payload: %+v", resp.User)
	}
}

func TestSignInHandler_InvalidCredentials(t *testing.T) {
	h, users, _ := newTestHandler(t)
	seedUser(t, users, "asha@clinic.example", "correct-horse-9", RoleDoctor, true, nil)

	rec := doJSON(t, h.SignIn, http.MethodPost, "/api/auth/signin",
		`{"email":"asha@clinic.example","password":"wrong"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestSignInHandler_MissingFields(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doJSON(t, h.SignIn, http.MethodPost, "/api/auth/signin", `{"email":"a@b.example"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSignUpHandler_Created(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doJSON(t, h.SignUp, http.MethodPost, "/api/auth/signup",
		`{"email":"new@clinic.example","password":"long-enough-pass","name":"New Staff","role":"nurse"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response must not leak password fields")
	}
}

func TestSignUpHandler_DuplicateEmail(t *testing.T) {
	h, users, _ := newTestHandler(t)
	seedUser(t, users, "taken@clinic.example", "correct-horse-9", RoleDoctor, true, nil)

	rec := doJSON(t, h.SignUp, http.MethodPost, "/api/auth/signup",
		`{"email":"taken@clinic.example","password":"long-enough-pass","name":"X"}`)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestResetPasswordHandler(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doJSON(t, h.ResetPassword, http.MethodPost, "/api/auth/reset-password",
		`{"email":"whoever@clinic.example"}`)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
}

func TestMeHandler(t *testing.T) {
	h, users, _ := newTestHandler(t)
	u := seedUser(t, users, "asha@clinic.example", "correct-horse-9", RoleDoctor, true, nil)

	s := &session.Session{UserID: u.ID, Token: "tok", Expiry: time.Now().Add(time.Hour)}
	rec := doJSON(t, h.Me, http.MethodGet, "/api/auth/me", "", func(req *http.Request) {
		*req = *req.WithContext(session.NewContext(req.Context(), s))
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var p session.UserProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ID != u.ID {
		t.Errorf("profile id = %v, want %v", p.ID, u.ID)
	}
}

func TestMeHandler_NoSession(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doJSON(t, h.Me, http.MethodGet, "/api/auth/me", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestSignOutHandler_OnlyCallersSessionEnds(t *testing.T) {
	h, users, ctrl, store := newTestHandlerWithStore(t, time.Hour)
	seedUser(t, users, "asha@clinic.example", "correct-horse-9", RoleDoctor, true, nil)
	seedUser(t, users, "meera@clinic.example", "different-pass-7", RoleReceptionist, true, nil)

	asha, err := ctrl.SignIn(context.Background(), "asha@clinic.example", "correct-horse-9")
	if err != nil {
		t.Fatalf("SignIn(asha): %v", err)
	}
	meera, err := ctrl.SignIn(context.Background(), "meera@clinic.example", "different-pass-7")
	if err != nil {
		t.Fatalf("SignIn(meera): %v", err)
	}

	// Asha signs out after Meera; the handler must end the requester's
	// session, not whichever one signed in last.
	rec := doJSON(t, h.SignOut, http.MethodPost, "/api/auth/signout", "", func(req *http.Request) {
		*req = *req.WithContext(session.NewContext(req.Context(), asha))
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if store.has(asha.Token) {
		t.Error("expected the caller's session snapshot to be deleted")
	}
	if !store.has(meera.Token) {
		t.Error("another user's session must survive the sign-out")
	}
}

func TestRefreshHandler_ReturnsFreshToken(t *testing.T) {
	// A short token lifetime puts the session inside the refresh window.
	h, users, ctrl, store := newTestHandlerWithStore(t, 2*time.Minute)
	seedUser(t, users, "asha@clinic.example", "correct-horse-9", RoleDoctor, true, nil)

	s, err := ctrl.SignIn(context.Background(), "asha@clinic.example", "correct-horse-9")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	rec := doJSON(t, h.Refresh, http.MethodPost, "/api/auth/refresh", "", func(req *http.Request) {
		*req = *req.WithContext(session.NewContext(req.Context(), s))
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp signInResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" || resp.Token == s.Token {
		t.Errorf("expected a new token, got %q", resp.Token)
	}
	if !store.has(resp.Token) {
		t.Error("expected the refreshed session to be persisted")
	}
	if store.has(s.Token) {
		t.Error("expected the superseded token to be deleted")
	}
}

func TestRefreshHandler_NoSession(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doJSON(t, h.Refresh, http.MethodPost, "/api/auth/refresh", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
