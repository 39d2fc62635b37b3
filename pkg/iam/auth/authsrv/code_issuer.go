package authsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/authcore/pkg/iam/account"
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/logx"
	"github.com/Abraxas-365/authcore/pkg/randx"
)

// CodeIssuer binds fresh authorization codes to accounts.
type CodeIssuer struct {
	accounts   account.Repository
	codeLength int
	now        func() time.Time
}

func NewCodeIssuer(accounts account.Repository, codeLength int) *CodeIssuer {
	return &CodeIssuer{
		accounts:   accounts,
		codeLength: codeLength,
		now:        time.Now,
	}
}

// Issue generates a code and stores it, with the PKCE challenge, on the
// account with the given canonical email.
func (i *CodeIssuer) Issue(ctx context.Context, email string, pkceChallenge *string) (string, error) {
	code, err := randx.AlphaNumeric(i.codeLength)
	if err != nil {
		return "", auth.ErrRegistry.NewWithCause(auth.CodeTokenGeneration, err)
	}

	rows, err := i.accounts.BindAuthorizationCode(ctx, email, code, i.now().UTC(), pkceChallenge)
	if err != nil {
		return "", err
	}

	switch {
	case rows == 1:
		return code, nil
	case rows == 0:
		return "", auth.ErrRegistry.New(auth.CodeInvalidUser)
	default:
		e := auth.ErrRegistry.New(auth.CodeCodeBindingInvariant).
			WithDetail("rows_affected", rows)
		logx.WithFields(logx.Fields{
			"email":         email,
			"rows_affected": rows,
		}).WithError(e).Error("authorization code bound to multiple accounts")
		return "", e
	}
}
