package auth

import (
	"context"
	"time"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam/account"
	"github.com/Abraxas-365/authcore/pkg/randx"
	"github.com/golang-jwt/jwt/v5"
)

// MinterConfig holds token lifetimes and lengths.
type MinterConfig struct {
	Issuer             string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	RefreshTokenLength int
	CSRFTokenLength    int
}

// Minter issues token pairs and rotates refresh tokens.
type Minter struct {
	signer   TokenSigner
	store    RefreshTokenStore
	accounts account.Repository
	cfg      MinterConfig
	now      func() time.Time
}

func NewMinter(signer TokenSigner, store RefreshTokenStore, accounts account.Repository, cfg MinterConfig) *Minter {
	return &Minter{
		signer:   signer,
		store:    store,
		accounts: accounts,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Mint creates a new token pair for acc whose access token lives for ttl.
func (m *Minter) Mint(ctx context.Context, acc *account.Account, ttl time.Duration) (*TokenPair, error) {
	csrf, err := randx.AlphaNumeric(m.cfg.CSRFTokenLength)
	if err != nil {
		return nil, ErrRegistry.NewWithCause(CodeTokenGeneration, err)
	}
	refresh, err := randx.AlphaNumeric(m.cfg.RefreshTokenLength)
	if err != nil {
		return nil, ErrRegistry.NewWithCause(CodeTokenGeneration, err)
	}

	now := m.now().Truncate(time.Second)
	claims := &Claims{
		Email:     acc.Email,
		Verified:  acc.Verified,
		Admin:     acc.Admin,
		CSRFToken: csrf,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   acc.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := m.signer.Encode(claims)
	if err != nil {
		return nil, errx.Wrap(err, "failed to encode access token", errx.TypeInternal)
	}

	if err := m.store.Save(ctx, refresh, acc.ID, m.cfg.RefreshTokenTTL); err != nil {
		return nil, errx.Wrap(err, "failed to store refresh token", errx.TypeInternal)
	}

	return &TokenPair{
		Claims:       claims,
		AuthToken:    signed,
		RefreshToken: refresh,
		CSRFToken:    csrf,
	}, nil
}

// Refresh consumes refreshToken and mints a new pair for its owner. A
// consumed token cannot be presented again.
func (m *Minter) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken()
	}

	accountID, err := m.store.Consume(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	acc, err := m.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errx.HasCode(err, account.CodeNotFound) {
			return nil, ErrInvalidRefreshToken()
		}
		return nil, err
	}
	if !acc.Verified {
		return nil, ErrUnauthorized()
	}

	return m.Mint(ctx, acc, m.cfg.AccessTokenTTL)
}

// Revoke drops refreshToken from the store.
func (m *Minter) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return m.store.Delete(ctx, refreshToken)
}
