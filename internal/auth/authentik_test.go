package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r)
		if user == nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(user.Username))
	})
}

func TestMockAuthLoginThenMiddleware(t *testing.T) {
	m := NewMockAuth()

	rec := httptest.NewRecorder()
	m.LoginHandler(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodPost, "/api/draft/spin", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	m.Middleware(RequireOrganizer(okHandler())).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "organizer", rec.Body.String())
}

func TestMiddlewareRejectsMissingSession(t *testing.T) {
	m := NewMockAuth()
	h := m.Middleware(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/players", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roster", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestMiddlewareRejectsExpiredSession(t *testing.T) {
	m := NewMockAuth()
	session := m.NewSession()
	m.store.now = func() time.Time { return session.ExpiresAt.Add(time.Second) }

	req := httptest.NewRequest(http.MethodGet, "/api/draft/state", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: session.ID})
	rec := httptest.NewRecorder()
	m.Middleware(okHandler()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMockLogoutDropsSession(t *testing.T) {
	m := NewMockAuth()
	session := m.NewSession()

	req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: session.ID})
	m.LogoutHandler(httptest.NewRecorder(), req)

	_, ok := m.store.get(session.ID)
	require.False(t, ok)
}

func TestUserForSession(t *testing.T) {
	m := NewMockAuth()
	session := m.NewSession()

	user, ok := m.UserForSession(session.ID)
	require.True(t, ok)
	require.True(t, IsOrganizer(user))

	_, ok = m.UserForSession("unknown")
	require.False(t, ok)

	m.store.now = func() time.Time { return session.ExpiresAt.Add(time.Second) }
	_, ok = m.UserForSession(session.ID)
	require.False(t, ok)
}

func TestRequireOrganizer(t *testing.T) {
	h := RequireOrganizer(okHandler())

	tests := []struct {
		name string
		user *User
		want int
	}{
		{"anonymous", nil, http.StatusForbidden},
		{"plain user", &User{Username: "viewer", Groups: []string{"users"}}, http.StatusForbidden},
		{"organizer", &User{Username: "lead", Groups: []string{OrganizerGroup}}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/draft/start", nil)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), tt.user))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAuthentikLoginRedirect(t *testing.T) {
	a := NewAuthentikAuth(&AuthentikConfig{
		BaseURL:     "https://sso.example.com/",
		ClientID:    "draft",
		RedirectURL: "http://localhost:3000/auth/callback",
	})

	rec := httptest.NewRecorder()
	a.LoginHandler(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "sso.example.com", loc.Host)
	require.Equal(t, "/application/o/authorize/", loc.Path)
	require.Equal(t, "draft", loc.Query().Get("client_id"))
	require.NotEmpty(t, loc.Query().Get("state"))
}

func TestAuthentikCallbackCreatesSession(t *testing.T) {
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/application/o/token/":
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "tok",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		case "/application/o/userinfo/":
			require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]any{
				"sub":                "u1",
				"preferred_username": "lead",
				"groups":             []string{OrganizerGroup},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer idp.Close()

	a := NewAuthentikAuth(&AuthentikConfig{BaseURL: idp.URL, ClientID: "draft", ClientSecret: "s"})

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=abc&code=xyz", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "abc"})
	rec := httptest.NewRecorder()
	a.CallbackHandler(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var sessionID string
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			sessionID = c.Value
		}
	}
	require.NotEmpty(t, sessionID)
	session, ok := a.store.get(sessionID)
	require.True(t, ok)
	require.True(t, IsOrganizer(session.User))
}

func TestAuthentikCallbackRejectsStateMismatch(t *testing.T) {
	a := NewAuthentikAuth(&AuthentikConfig{BaseURL: "https://sso.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=evil", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "abc"})
	rec := httptest.NewRecorder()
	a.CallbackHandler(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	a.CallbackHandler(rec, httptest.NewRequest(http.MethodGet, "/auth/callback", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
