// Package auth identifies the acting user of an API request.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Actor is the user a request acts on behalf of.
type Actor struct {
	ID   string
	Name string
}

type ctxKey struct{}

// Claims are the token claims the API understands. The subject is the actor
// id; name is optional.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator validates HS256 bearer tokens. With an empty secret every
// request runs as the fallback actor, which suits a single-operator install.
type Authenticator struct {
	secret   []byte
	fallback Actor
}

func New(secret string, fallback Actor) *Authenticator {
	return &Authenticator{secret: []byte(secret), fallback: fallback}
}

func (a *Authenticator) Enabled() bool {
	return len(a.secret) > 0
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), a.fallback)))
			return
		}

		h := r.Header.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			http.Error(w, "missing auth token", http.StatusUnauthorized)
			return
		}

		actor, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// Parse validates a token and returns the actor it names.
func (a *Authenticator) Parse(tokenStr string) (Actor, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Actor{}, err
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return Actor{}, errors.New("token has no subject")
	}

	return Actor{ID: claims.Subject, Name: claims.Name}, nil
}

// Issue signs a token for actor valid for ttl.
func (a *Authenticator) Issue(actor Actor, ttl time.Duration) (string, error) {
	if !a.Enabled() {
		return "", errors.New("auth is disabled")
	}

	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Name: actor.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	return token.SignedString(a.secret)
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

// FromContext returns the actor stored by the middleware, if any.
func FromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(ctxKey{}).(Actor)
	return actor, ok
}
