package account

import (
	"context"
	"time"

	"github.com/Abraxas-365/authcore/pkg/kernel"
)

// Repository is the storage contract for accounts. Emails passed in are
// expected to be canonical already.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id kernel.AccountID) (*Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, acc Account) error

	// BindAuthorizationCode sets code, issue time and PKCE challenge on the
	// account with the given email in one statement and reports rows affected.
	BindAuthorizationCode(ctx context.Context, email, code string, issuedAt time.Time, challenge *string) (int64, error)

	// ConfirmEmail marks the account holding code as verified and clears the
	// code. It reports rows affected.
	ConfirmEmail(ctx context.Context, code string) (int64, error)
}
