package accountsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam/account"
	"github.com/Abraxas-365/authcore/pkg/iam/password"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/Abraxas-365/authcore/pkg/logx"
	"github.com/Abraxas-365/authcore/pkg/notifx"
	"github.com/Abraxas-365/authcore/pkg/ptrx"
	"github.com/Abraxas-365/authcore/pkg/randx"
)

const verificationCodeLength = 32

// Mailer renders and sends templated email. *notifx.Client satisfies it.
type Mailer interface {
	SendTemplatedEmail(ctx context.Context, templateName string, data any, msg notifx.EmailMessage, opts ...notifx.Option) error
}

// CreateRequest is the admin payload for a new account.
type CreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Verified bool   `json:"verified"`
	Admin    bool   `json:"admin"`
}

// AccountService creates accounts and confirms their email addresses.
type AccountService struct {
	repo    account.Repository
	hasher  *password.Hasher
	policy  password.Policy
	mailer  Mailer
	siteURL string
}

func NewAccountService(repo account.Repository, hasher *password.Hasher, policy password.Policy, mailer Mailer, siteURL string) *AccountService {
	return &AccountService{
		repo:    repo,
		hasher:  hasher,
		policy:  policy,
		mailer:  mailer,
		siteURL: siteURL,
	}
}

// Create registers a new account. Accounts that are not created verified
// receive an email with a confirmation link.
func (s *AccountService) Create(ctx context.Context, req CreateRequest) (*account.Account, error) {
	email, err := account.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := password.Validate(req.Password, req.Password, s.policy); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, account.ErrAlreadyExists().WithDetail("email", email)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errx.Wrap(err, "failed to hash password", errx.TypeInternal)
	}

	acc := account.Account{
		ID:           kernel.NewAccountID(),
		Email:        email,
		PasswordHash: hash,
		Verified:     req.Verified,
		Admin:        req.Admin,
		CreatedAt:    time.Now().UTC(),
	}

	if !req.Verified {
		code, err := randx.AlphaNumeric(verificationCodeLength)
		if err != nil {
			return nil, errx.Wrap(err, "failed to generate verification code", errx.TypeInternal)
		}
		acc.EmailVerificationCode = ptrx.String(code)
	}

	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, err
	}

	if acc.EmailVerificationCode != nil {
		if err := s.sendVerification(ctx, acc); err != nil {
			return nil, err
		}
	}

	logx.WithFields(logx.Fields{
		"account_id": acc.ID,
		"verified":   acc.Verified,
		"admin":      acc.Admin,
	}).Info("account created")

	return &acc, nil
}

func (s *AccountService) sendVerification(ctx context.Context, acc account.Account) error {
	data := map[string]string{
		"Email": acc.Email,
		"Link":  s.siteURL + "/api/auth/v1/verify_email/confirm/" + *acc.EmailVerificationCode,
	}
	msg := notifx.EmailMessage{
		To:      []string{acc.Email},
		Subject: "Verify your email address",
	}

	err := s.mailer.SendTemplatedEmail(ctx, notifx.VerificationTemplate, data, msg,
		notifx.WithTags(map[string]string{"kind": "email_verification"}))
	if err != nil {
		return account.ErrRegistry.NewWithCause(account.CodeVerificationDispatch, err).
			WithDetail("account_id", acc.ID)
	}
	return nil
}

// ConfirmEmail verifies the account holding code.
func (s *AccountService) ConfirmEmail(ctx context.Context, code string) error {
	if code == "" {
		return account.ErrRegistry.New(account.CodeInvalidVerificationCode)
	}
	n, err := s.repo.ConfirmEmail(ctx, code)
	if err != nil {
		return err
	}
	if n == 0 {
		return account.ErrRegistry.New(account.CodeInvalidVerificationCode)
	}
	return nil
}
