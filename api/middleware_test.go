package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func TestGuard_VerifyJWT(t *testing.T) {
	g := Guard{JWTSecret: "test-secret"}

	token := signTestToken(t, "test-secret", jwt.MapClaims{"sub": "farmer-1", "role": "farmer"})
	info, err := g.verifyJWT(token)

	assert.NoError(t, err)
	assert.Equal(t, "farmer-1", info.ID())
	assert.Equal(t, []string{"farmer"}, info.Groups())
}

func TestGuard_VerifyJWTWrongSecret(t *testing.T) {
	g := Guard{JWTSecret: "test-secret"}

	token := signTestToken(t, "another-secret", jwt.MapClaims{"sub": "farmer-1"})
	_, err := g.verifyJWT(token)

	assert.Error(t, err)
}

func TestGuard_VerifyJWTMissingSub(t *testing.T) {
	g := Guard{JWTSecret: "test-secret"}

	token := signTestToken(t, "test-secret", jwt.MapClaims{"role": "farmer"})
	_, err := g.verifyJWT(token)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "token missing sub claim")
}

func TestGuard_AuthenticateTokenUnconfigured(t *testing.T) {
	g := Guard{}

	req, _ := http.NewRequest("GET", "/api/prices", nil)
	_, err := g.authenticateToken(context.Background(), req, "anything")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no token verification configured")
}

func TestRequestIdentityRoundTrip(t *testing.T) {
	req, _ := http.NewRequest("GET", "/api/prices", nil)

	_, ok := RequestIdentity(req)
	assert.False(t, ok)

	req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: "farmer-1", Role: "farmer"}))
	id, ok := RequestIdentity(req)

	assert.True(t, ok)
	assert.Equal(t, "farmer-1", id.UserID)
	assert.Equal(t, "farmer", id.Role)
}
