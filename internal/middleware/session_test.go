package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/meetman/internal/session"
)

// mockSessionFinder は関数フィールドでSessionFinderを実装する。
type mockSessionFinder struct {
	findFunc func(id string) *session.Session
}

func (m *mockSessionFinder) Find(id string) *session.Session {
	return m.findFunc(id)
}

func TestSessionMiddleware_ValidSession(t *testing.T) {
	finder := &mockSessionFinder{
		findFunc: func(id string) *session.Session {
			if id != "valid-session" {
				return nil
			}
			return &session.Session{
				ID:        id,
				UserID:    "alice",
				ExpiresAt: time.Now().Add(time.Hour),
			}
		},
	}

	var gotUserID string
	handler := NewSessionMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := UserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("UserIDFromContext returned error: %v", err)
		}
		gotUserID = userID
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/friends", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "valid-session"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotUserID != "alice" {
		t.Errorf("user ID in context = %s, want alice", gotUserID)
	}
}

func TestSessionMiddleware_Rejects(t *testing.T) {
	finder := &mockSessionFinder{
		findFunc: func(id string) *session.Session { return nil },
	}

	handler := NewSessionMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler was called for unauthenticated request")
	}))

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{name: "Cookieなし", cookie: nil},
		{name: "空のCookie値", cookie: &http.Cookie{Name: SessionCookieName, Value: ""}},
		{name: "無効なセッションID", cookie: &http.Cookie{Name: SessionCookieName, Value: "expired-or-bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/friends", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestUserIDFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if _, err := UserIDFromContext(req.Context()); err == nil {
		t.Error("UserIDFromContext returned nil error for context without user ID")
	}
}

func TestContextWithUserID_RoundTrip(t *testing.T) {
	ctx := ContextWithUserID(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "bob")

	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UserIDFromContext returned error: %v", err)
	}
	if userID != "bob" {
		t.Errorf("userID = %s, want bob", userID)
	}
}
