package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const callerKey contextKey = "caller"

var errNoCaller = errors.New("middleware: no caller address in token")

// Claims is the JWT payload for operator routes. Address is the 0x-prefixed
// account identity the request acts as.
type Claims struct {
	Address string `json:"addr"`
	jwt.RegisteredClaims
}

// Authenticator validates bearer tokens on mutating routes.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator builds an HS256 authenticator with the shared secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// IssueToken mints a token for the given caller address. Used by operator
// tooling and tests.
func (a *Authenticator) IssueToken(address string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Address: address,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// CallerFromContext returns the authenticated caller address string.
func CallerFromContext(ctx context.Context) (string, error) {
	addr, ok := ctx.Value(callerKey).(string)
	if !ok || addr == "" {
		return "", errNoCaller
	}
	return addr, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// caller address in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid || claims.Address == "" {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), callerKey, claims.Address)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
