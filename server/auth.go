package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthKey is a key in the context of a request populated by AuthHandler.
type AuthKey int64

const (
	AuthLoggedIn AuthKey = iota
	AuthTokenClient
)

const jwtIssuer = "yarnspinner-server"

// getJWT extracts a bearer token from the Authorization header. Grounded on
// server/token.go's identically-named helper; unchanged since bearer-token
// extraction has nothing to do with what the token authorizes.
func getJWT(req *http.Request) (string, error) {
	authHdr := req.Header.Get("Authorization")
	if authHdr == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	parts := strings.SplitN(authHdr, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("authorization header is not a Bearer token")
	}
	return strings.TrimSpace(parts[1]), nil
}

// validateJWT checks tok's signature, issuer, and expiry against secret and
// returns the client identifier from its subject claim.
//
// This never looks a user up in a database: a dialogue session has no
// concept of an account, so the signing key is the server's shared secret
// alone. Any caller holding a validly-signed token may operate on any
// session ID it names in requests; session-level isolation, not per-user
// ownership, is what the session ID itself already provides.
func validateJWT(tok string, secret []byte) (string, error) {
	parsed, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(jwtIssuer), jwt.WithLeeway(time.Minute))
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("invalid token")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token has no subject claim")
	}
	return sub, nil
}

// generateJWT signs a token for clientID (any string the caller uses to
// label itself - no account lookup is ever performed for it).
func generateJWT(clientID string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"iss": jwtIssuer,
		"sub": clientID,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return tok.SignedString(secret)
}

// AuthHandler is middleware requiring (or optionally accepting) a valid
// bearer token. Tokens are checked against the server's shared secret only,
// with no user lookup; see validateJWT's doc comment above.
type AuthHandler struct {
	secret        []byte
	required      bool
	unauthedDelay time.Duration
	next          http.Handler
}

func (ah *AuthHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var loggedIn bool
	var clientID string

	tok, err := getJWT(req)
	if err != nil {
		if ah.required {
			result := jsonUnauthorized("", err.Error())
			time.Sleep(ah.unauthedDelay)
			result.writeResponse(w, req)
			return
		}
	} else {
		sub, err := validateJWT(tok, ah.secret)
		if err != nil {
			if ah.required {
				result := jsonUnauthorized("", err.Error())
				time.Sleep(ah.unauthedDelay)
				result.writeResponse(w, req)
				return
			}
		} else {
			clientID = sub
			loggedIn = true
		}
	}

	ctx := req.Context()
	ctx = context.WithValue(ctx, AuthLoggedIn, loggedIn)
	ctx = context.WithValue(ctx, AuthTokenClient, clientID)
	ah.next.ServeHTTP(w, req.WithContext(ctx))
}

// RequireAuth returns a Middleware that rejects requests without a valid
// bearer token.
func RequireAuth(secret []byte, unauthedDelay time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{secret: secret, required: true, unauthedDelay: unauthedDelay, next: next}
	}
}
