package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patelpulse/pulse-backend/internal/authz"
	pkgAuth "github.com/patelpulse/pulse-backend/pkg/auth"
	"github.com/patelpulse/pulse-backend/pkg/config"
	"github.com/patelpulse/pulse-backend/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func mintTestToken(t *testing.T, role enums.AdminRole) (string, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	token, _, err := pkgAuth.MintAccessToken(testJWT, time.Now(), pkgAuth.AccessTokenPayload{
		AdminID: id,
		Email:   "admin@example.com",
		Role:    role,
	})
	require.NoError(t, err)
	return token, id
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWT, nil)(okHandler())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWT, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthRejectsForeignSecret(t *testing.T) {
	token, _ := mintTestToken(t, enums.AdminRoleAdmin)
	other := testJWT
	other.Secret = "other"
	handler := Auth(other, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthAllowsValidToken(t *testing.T) {
	token, id := mintTestToken(t, enums.AdminRoleEditor)

	var actor authz.Actor
	handler := Auth(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, id.String(), actor.AdminID)
	assert.Equal(t, enums.AdminRoleEditor, actor.Role)
}

func TestRequireCapability(t *testing.T) {
	policy := authz.NewRolePolicy()
	handler := RequireCapability(policy, authz.ActionRefundSale, nil)(okHandler())

	cases := []struct {
		name string
		role enums.AdminRole
		want int
	}{
		{"admin", enums.AdminRoleAdmin, http.StatusOK},
		{"editor", enums.AdminRoleEditor, http.StatusForbidden},
		{"anonymous", "", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.role != "" {
				req = req.WithContext(WithActor(req.Context(), "a1", tc.role))
			}
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			assert.Equal(t, tc.want, resp.Code)
		})
	}
}
