package authsrv

import (
	"context"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam/account"
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/iam/password"
	"github.com/Abraxas-365/authcore/pkg/randx"
)

// Verifier checks email/password credentials.
type Verifier struct {
	accounts  account.Repository
	hasher    *password.Hasher
	dummyHash string
}

// NewVerifier prepares a throwaway hash that is checked when no account
// matches, so unknown emails cost the same as wrong passwords.
func NewVerifier(accounts account.Repository, hasher *password.Hasher) (*Verifier, error) {
	secret, err := randx.AlphaNumeric(32)
	if err != nil {
		return nil, err
	}
	dummy, err := hasher.Hash(secret)
	if err != nil {
		return nil, err
	}
	return &Verifier{accounts: accounts, hasher: hasher, dummyHash: dummy}, nil
}

// Verify returns the account for valid credentials. A missing account, an
// unverified account and a wrong password all produce auth.ErrUnauthorized.
// A malformed email is a validation error; a malformed stored hash is
// internal.
func (v *Verifier) Verify(ctx context.Context, email, pw string) (*account.Account, error) {
	canonical, err := account.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	acc, err := v.accounts.FindByEmail(ctx, canonical)
	if err != nil {
		if errx.HasCode(err, account.CodeNotFound) {
			_, _ = v.hasher.Verify(pw, v.dummyHash)
			return nil, auth.ErrUnauthorized()
		}
		return nil, err
	}

	ok, err := v.hasher.Verify(pw, acc.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok || !acc.Verified {
		return nil, auth.ErrUnauthorized()
	}
	return acc, nil
}
