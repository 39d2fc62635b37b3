package account

import (
	"net/mail"
	"strings"
	"time"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Table is the storage table holding accounts.
const Table = "_user"

// Account is a user account as stored.
type Account struct {
	ID                        kernel.AccountID `db:"id" json:"id"`
	Email                     string           `db:"email" json:"email"`
	PasswordHash              string           `db:"password_hash" json:"-"`
	Verified                  bool             `db:"verified" json:"verified"`
	Admin                     bool             `db:"admin" json:"admin"`
	EmailVerificationCode     *string          `db:"email_verification_code" json:"-"`
	AuthorizationCode         *string          `db:"authorization_code" json:"-"`
	AuthorizationCodeIssuedAt *time.Time       `db:"authorization_code_issued_at" json:"-"`
	PKCECodeChallenge         *string          `db:"pkce_code_challenge" json:"-"`
	CreatedAt                 time.Time        `db:"created_at" json:"created_at"`
}

// NormalizeEmail returns the canonical form of an address: trimmed and
// lowercased. Letters are never rewritten into other letters. Display-name forms like "Bob <bob@x>" are rejected.
func NormalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrRegistry.New(CodeInvalidEmail)
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Name != "" || addr.Address != trimmed {
		return "", ErrRegistry.NewWithCause(CodeInvalidEmail, err).WithDetail("email", trimmed)
	}

	return cases.Lower(language.Und).String(trimmed), nil
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("ACCOUNT")

var (
	CodeNotFound                = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, 0, "account not found")
	CodeAlreadyExists           = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, 0, "account already exists")
	CodeInvalidEmail            = ErrRegistry.Register("INVALID_EMAIL", errx.TypeValidation, 0, "invalid email address")
	CodeInvalidVerificationCode = ErrRegistry.Register("INVALID_VERIFICATION_CODE", errx.TypeValidation, 0, "invalid email verification code")
	CodeVerificationDispatch    = ErrRegistry.Register("VERIFICATION_DISPATCH_FAILED", errx.TypeInternal, 0, "failed to send verification email")
)

func ErrNotFound() *errx.Error {
	return ErrRegistry.New(CodeNotFound)
}

func ErrAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeAlreadyExists)
}
