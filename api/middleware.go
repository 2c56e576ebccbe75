package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"
)

// Identity is the verified caller extracted from a bearer token
type Identity struct {
	UserID string
	Role   string
}

type contextKey string

const identityContextKey contextKey = "ceylonara-identity"

// WithIdentity returns a context carrying the verified caller identity
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// RequestIdentity returns the verified caller identity stored on the request context
func RequestIdentity(r *http.Request) (Identity, bool) {
	id, ok := r.Context().Value(identityContextKey).(Identity)
	return id, ok
}

// Guard verifies bearer tokens issued by the external identity provider. When
// a shared JWT secret is configured tokens are verified locally; otherwise
// each token is introspected remotely. Either way the result is cached.
type Guard struct {
	JWTSecret     string
	IntrospectURL string

	client *resty.Client
}

var authenticator auth.Authenticator
var cache store.Cache

// SetupGoGuardian sets up the go-guardian middleware
func (g *Guard) SetupGoGuardian() {
	g.client = resty.New().SetTimeout(10 * time.Second)

	authenticator = auth.New()
	cache = store.NewFIFO(context.Background(), time.Hour)
	tokenStrategy := bearer.New(g.authenticateToken, cache)

	authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
}

// Middleware gates a route behind the external identity provider: the bearer
// token is verified and the caller identity stored on the request context
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := authenticator.Authenticate(r)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		id := Identity{UserID: user.ID()}
		if groups := user.Groups(); len(groups) > 0 {
			id.Role = groups[0]
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func (g *Guard) authenticateToken(ctx context.Context, r *http.Request, token string) (auth.Info, error) {
	if g.JWTSecret != "" {
		return g.verifyJWT(token)
	}
	if g.IntrospectURL != "" {
		return g.introspect(ctx, token)
	}
	return nil, fmt.Errorf("no token verification configured")
}

func (g *Guard) verifyJWT(token string) (auth.Info, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(g.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token, %v", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("token missing sub claim")
	}
	role, _ := claims["role"].(string)
	return auth.NewDefaultUser(sub, sub, []string{role}, nil), nil
}

type introspectionResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (g *Guard) introspect(ctx context.Context, token string) (auth.Info, error) {
	result := introspectionResponse{}
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"token": token}).
		SetResult(&result).
		Post(g.IntrospectURL)
	if err != nil {
		return nil, fmt.Errorf("identity provider unreachable, %v", err)
	}
	if resp.StatusCode() != http.StatusOK || !result.Active {
		return nil, fmt.Errorf("token rejected by identity provider")
	}
	return auth.NewDefaultUser(result.UserID, result.UserID, []string{result.Role}, nil), nil
}
