package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func Test_generateJWT_validateJWT_roundTrip(t *testing.T) {
	tok, err := generateJWT("client-1", testSecret)
	require.NoError(t, err)

	sub, err := validateJWT(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "client-1", sub)
}

func Test_validateJWT_wrongSecretIsError(t *testing.T) {
	tok, err := generateJWT("client-1", testSecret)
	require.NoError(t, err)

	_, err = validateJWT(tok, []byte("not-the-right-secret-not-the-right"))
	assert.Error(t, err)
}

func Test_validateJWT_expiredIsError(t *testing.T) {
	claims := jwt.MapClaims{
		"iss": jwtIssuer,
		"sub": "client-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := tok.SignedString(testSecret)
	require.NoError(t, err)

	_, err = validateJWT(signed, testSecret)
	assert.Error(t, err)
}

func Test_validateJWT_wrongIssuerIsError(t *testing.T) {
	claims := jwt.MapClaims{
		"iss": "someone-else",
		"sub": "client-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := tok.SignedString(testSecret)
	require.NoError(t, err)

	_, err = validateJWT(signed, testSecret)
	assert.Error(t, err)
}
