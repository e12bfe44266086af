package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laticinios/internal/domain"
	"laticinios/internal/pkg/cache"
	"laticinios/internal/pkg/logger"
	"laticinios/internal/pkg/session"
	"laticinios/internal/pkg/token"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, _ := SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(info.Username))
	})
}

func newAuthFixture(t *testing.T) (*Auth, *token.Service, *session.Store) {
	t.Helper()
	tokens := token.NewService("segredo", time.Hour)
	sessions := session.NewStore(cache.NewMemoryClient())
	return NewAuth(tokens, sessions, logger.NewNop()), tokens, sessions
}

func login(t *testing.T, tokens *token.Service, sessions *session.Store, username string, role domain.Role) string {
	t.Helper()
	sid := username + "-sess"
	require.NoError(t, sessions.Create(context.Background(), domain.SessionInfo{SessionID: sid, Username: username, Role: role}, time.Hour))
	tok, _, err := tokens.GenerateToken(username, string(role), sid)
	require.NoError(t, err)
	return tok
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) domain.ErrorResponse {
	t.Helper()
	var body domain.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestAuthenticate_MissingToken(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	rec := httptest.NewRecorder()
	auth.Authenticate(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/areas", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Category)
}

func TestAuthenticate_BearerAndCookie(t *testing.T) {
	auth, tokens, sessions := newAuthFixture(t)
	tok := login(t, tokens, sessions, "joao.silva", domain.RoleOperator)

	req := httptest.NewRequest(http.MethodGet, "/v1/areas", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	auth.Authenticate(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "joao.silva", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/v1/areas", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tok})
	rec = httptest.NewRecorder()
	auth.Authenticate(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate_RevokedSession(t *testing.T) {
	auth, tokens, sessions := newAuthFixture(t)
	tok := login(t, tokens, sessions, "admin", domain.RoleManager)
	require.NoError(t, sessions.Revoke(context.Background(), "admin-sess"))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	auth.Authenticate(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name string
		ctx  func(context.Context) context.Context
		perm domain.Permission
		want int
	}{
		{
			name: "sem sessão",
			ctx:  func(c context.Context) context.Context { return c },
			perm: domain.PermViewWarehouse,
			want: http.StatusUnauthorized,
		},
		{
			name: "operador pode registrar venda",
			ctx: func(c context.Context) context.Context {
				return WithSession(c, domain.SessionInfo{Username: "joao.silva", Role: domain.RoleOperator})
			},
			perm: domain.PermRegisterSale,
			want: http.StatusOK,
		},
		{
			name: "operador não gerencia áreas",
			ctx: func(c context.Context) context.Context {
				return WithSession(c, domain.SessionInfo{Username: "joao.silva", Role: domain.RoleOperator})
			},
			perm: domain.PermManageAreas,
			want: http.StatusForbidden,
		},
		{
			name: "papel desconhecido",
			ctx: func(c context.Context) context.Context {
				return WithSession(c, domain.SessionInfo{Username: "x", Role: "visitante"})
			},
			perm: domain.PermViewWarehouse,
			want: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(tt.ctx(req.Context()))
			rec := httptest.NewRecorder()

			RequirePermission(tt.perm)(okHandler()).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	limited := RateLimiter(cache.NewMemoryClient(), 2, time.Minute, logger.NewNop())(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(okHandler(), mw("a"), mw("b"), RequestLogger(logger.NewNop()))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b"}, order)
}
