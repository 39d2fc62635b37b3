package auth_test

import (
	"testing"
	"time"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClaims(exp time.Time) *auth.Claims {
	return &auth.Claims{
		Email:     "user@example.com",
		Verified:  true,
		CSRFToken: "csrf",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "authcore",
			Subject:   "account-1",
			IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func TestJWTEncodeIsDeterministic(t *testing.T) {
	svc := auth.NewJWTService("secret", "authcore")
	claims := testClaims(time.Now().Add(time.Hour).Truncate(time.Second))

	a, err := svc.Encode(claims)
	require.NoError(t, err)
	b, err := svc.Encode(claims)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	decoded, err := svc.Decode(a)
	require.NoError(t, err)
	assert.Equal(t, "account-1", decoded.Subject)
	assert.Equal(t, "csrf", decoded.CSRFToken)
	assert.True(t, decoded.Verified)
}

func TestJWTDecodeRejects(t *testing.T) {
	svc := auth.NewJWTService("secret", "authcore")

	expired, err := svc.Encode(testClaims(time.Now().Add(-time.Minute)))
	require.NoError(t, err)
	_, err = svc.Decode(expired)
	assert.True(t, errx.HasCode(err, auth.CodeInvalidToken))

	other, err := auth.NewJWTService("other-secret", "authcore").Encode(testClaims(time.Now().Add(time.Hour)))
	require.NoError(t, err)
	_, err = svc.Decode(other)
	assert.True(t, errx.HasCode(err, auth.CodeInvalidToken))

	_, err = svc.Decode("garbage")
	assert.True(t, errx.HasCode(err, auth.CodeInvalidToken))
}

func TestJWTMissingKeyIsInternal(t *testing.T) {
	_, err := auth.NewJWTService("", "authcore").Encode(testClaims(time.Now().Add(time.Hour)))
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, auth.CodeSigningKeyMissing))
	assert.Equal(t, 500, errx.From(err).HTTPStatus)
}
