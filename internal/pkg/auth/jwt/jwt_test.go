package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(&Payload{ID: "student-1", Role: RoleStudent}, secret, time.Hour)
	require.NoError(t, err)

	payload, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "student-1", payload.ID)
	assert.Equal(t, RoleStudent, payload.Role)
	assert.Equal(t, TokenIssuer, payload.Issuer)
	assert.Greater(t, payload.ExpiresAt, time.Now().Unix())
}

func TestStandardClaimsAreTopLevel(t *testing.T) {
	token, err := GenerateToken(&Payload{ID: "student-1", Role: RoleStudent}, secret, time.Hour)
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) { return []byte(secret), nil })
	require.NoError(t, err)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Contains(t, claims, "exp")
	assert.Contains(t, claims, "iat")
	assert.Equal(t, TokenIssuer, claims["iss"])
	assert.Equal(t, "student-1", claims["sub"])
	assert.NotContains(t, claims, "standard_claims")
}

func TestParseTokenRejects(t *testing.T) {
	_, err := GenerateToken(&Payload{ID: "x", Role: "owner"}, secret, time.Hour)
	assert.Error(t, err)

	token, err := GenerateToken(&Payload{ID: "1", Role: RoleAlumni}, secret, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)

	expired, err := GenerateToken(&Payload{ID: "1", Role: RoleAlumni}, secret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, secret)
	assert.Error(t, err)

	_, err = ParseToken("not.a.token", secret)
	assert.Error(t, err)
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws?token=from-query", nil)
	assert.Equal(t, "from-query", TokenFromRequest(r))

	r.Header.Set("Authorization", "Bearer  from-header ")
	assert.Equal(t, "from-header", TokenFromRequest(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, TokenFromRequest(r))
}

func TestMiddlewareChain(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := IdentityExtractorMiddleware(secret)(RequireRole(RoleAdmin)(ok))

	serve := func(token string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	admin, err := GenerateToken(&Payload{ID: "admin@alumnilink.com", Role: RoleAdmin}, secret, time.Hour)
	require.NoError(t, err)
	student, err := GenerateToken(&Payload{ID: "student-1", Role: RoleStudent}, secret, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, serve(admin))
	assert.Equal(t, http.StatusForbidden, serve(student))
	assert.Equal(t, http.StatusUnauthorized, serve(""))
	assert.Equal(t, http.StatusUnauthorized, serve("garbage"))
}

func TestPayloadPermissions(t *testing.T) {
	var anonymous *Payload
	assert.False(t, anonymous.IsAdmin())
	assert.False(t, anonymous.IsSelfOrAdmin(RoleAlumni, "1"))

	p := &Payload{ID: "1", Role: RoleAlumni}
	assert.True(t, p.IsSelfOrAdmin(RoleAlumni, "1"))
	assert.False(t, p.IsSelfOrAdmin(RoleAlumni, "2"))
	assert.False(t, p.IsSelfOrAdmin(RoleStudent, "1"))

	admin := &Payload{ID: "admin@alumnilink.com", Role: RoleAdmin}
	assert.True(t, admin.IsSelfOrAdmin(RoleStudent, "2"))
}
