package accountinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/authcore/pkg/database"
	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam/account"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/jmoiron/sqlx"
)

const columns = `id, email, password_hash, verified, admin, email_verification_code,
	authorization_code, authorization_code_issued_at, pkce_code_challenge, created_at`

// Statement templates. Positional ones use '?' and are rebound per driver
// when the repository is built; named ones are bound by sqlx at exec time.
var (
	findByEmailQuery = fmt.Sprintf(`SELECT %s FROM %s WHERE email = ?`, columns, account.Table)
	findByIDQuery    = fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, columns, account.Table)
	existsQuery      = fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE email = ?`, account.Table)

	insertQuery = fmt.Sprintf(`
		INSERT INTO %s (
			id, email, password_hash, verified, admin, email_verification_code, created_at
		) VALUES (
			:id, :email, :password_hash, :verified, :admin, :email_verification_code, :created_at
		)`, account.Table)

	bindCodeQuery = fmt.Sprintf(`
		UPDATE %s SET
			authorization_code = :authorization_code,
			authorization_code_issued_at = :issued_at,
			pkce_code_challenge = :pkce_code_challenge
		WHERE email = :email`, account.Table)

	confirmEmailQuery = fmt.Sprintf(`
		UPDATE %s SET
			verified = :verified,
			email_verification_code = NULL
		WHERE email_verification_code = :code`, account.Table)
)

// SQLAccountRepository implements account.Repository on sqlx for both
// PostgreSQL and SQLite.
type SQLAccountRepository struct {
	db *sqlx.DB

	findByEmail string
	findByID    string
	exists      string
}

func NewSQLAccountRepository(db *sqlx.DB) *SQLAccountRepository {
	return &SQLAccountRepository{
		db:          db,
		findByEmail: db.Rebind(findByEmailQuery),
		findByID:    db.Rebind(findByIDQuery),
		exists:      db.Rebind(existsQuery),
	}
}

var _ account.Repository = (*SQLAccountRepository)(nil)

func (r *SQLAccountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	acc, err := database.QueryOne[account.Account](ctx, r.db, r.findByEmail, email)
	if err != nil {
		return nil, errx.Wrap(err, "failed to find account by email", errx.TypeInternal)
	}
	if acc == nil {
		return nil, account.ErrNotFound()
	}
	return acc, nil
}

func (r *SQLAccountRepository) FindByID(ctx context.Context, id kernel.AccountID) (*account.Account, error) {
	acc, err := database.QueryOne[account.Account](ctx, r.db, r.findByID, id.String())
	if err != nil {
		return nil, errx.Wrap(err, "failed to find account by id", errx.TypeInternal).
			WithDetail("account_id", id)
	}
	if acc == nil {
		return nil, account.ErrNotFound().WithDetail("account_id", id)
	}
	return acc, nil
}

func (r *SQLAccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, r.exists, email); err != nil {
		return false, errx.Wrap(err, "failed to check account existence", errx.TypeInternal)
	}
	return n > 0, nil
}

func (r *SQLAccountRepository) Create(ctx context.Context, acc account.Account) error {
	if _, err := database.Execute(ctx, r.db, insertQuery, acc); err != nil {
		if database.IsUniqueViolation(err) {
			return account.ErrAlreadyExists()
		}
		return errx.Wrap(err, "failed to create account", errx.TypeInternal)
	}
	return nil
}

type codeBinding struct {
	Email     string    `db:"email"`
	Code      string    `db:"authorization_code"`
	IssuedAt  time.Time `db:"issued_at"`
	Challenge *string   `db:"pkce_code_challenge"`
}

func (r *SQLAccountRepository) BindAuthorizationCode(ctx context.Context, email, code string, issuedAt time.Time, challenge *string) (int64, error) {
	n, err := database.Execute(ctx, r.db, bindCodeQuery, codeBinding{
		Email:     email,
		Code:      code,
		IssuedAt:  issuedAt,
		Challenge: challenge,
	})
	if err != nil {
		return 0, errx.Wrap(err, "failed to bind authorization code", errx.TypeInternal)
	}
	return n, nil
}

func (r *SQLAccountRepository) ConfirmEmail(ctx context.Context, code string) (int64, error) {
	n, err := database.Execute(ctx, r.db, confirmEmailQuery, map[string]any{
		"verified": true,
		"code":     code,
	})
	if err != nil {
		return 0, errx.Wrap(err, "failed to confirm email", errx.TypeInternal)
	}
	return n, nil
}
