package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// JWTService implements TokenSigner with HS256.
type JWTService struct {
	secretKey []byte
	issuer    string
}

func NewJWTService(secretKey, issuer string) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
	}
}

// Encode signs claims exactly as given. It adds no timestamps, so encoding
// the same claims twice yields the same string.
func (j *JWTService) Encode(claims *Claims) (string, error) {
	if len(j.secretKey) == 0 {
		return "", ErrRegistry.New(CodeSigningKeyMissing)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", ErrRegistry.NewWithCause(CodeSigningFailed, err)
	}
	return signed, nil
}

// Decode verifies signature, issuer and expiry.
func (j *JWTService) Decode(tokenString string) (*Claims, error) {
	if len(j.secretKey) == 0 {
		return nil, ErrRegistry.New(CodeSigningKeyMissing)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, ErrRegistry.NewWithCause(CodeInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrRegistry.New(CodeInvalidToken)
	}
	return claims, nil
}
