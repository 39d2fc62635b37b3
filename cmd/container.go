// cmd/container.go
//
// Composition root. Owns infrastructure (DB, Redis, mail) and wires the
// account and auth modules on top of it.
package main

import (
	"context"
	"time"

	"github.com/Abraxas-365/authcore/pkg/asyncx"
	"github.com/Abraxas-365/authcore/pkg/config"
	"github.com/Abraxas-365/authcore/pkg/database"
	"github.com/Abraxas-365/authcore/pkg/iam/account/accountapi"
	"github.com/Abraxas-365/authcore/pkg/iam/account/accountinfra"
	"github.com/Abraxas-365/authcore/pkg/iam/account/accountsrv"
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/iam/auth/authapi"
	"github.com/Abraxas-365/authcore/pkg/iam/auth/authinfra"
	"github.com/Abraxas-365/authcore/pkg/iam/auth/authsrv"
	"github.com/Abraxas-365/authcore/pkg/iam/password"
	"github.com/Abraxas-365/authcore/pkg/iam/redirect"
	"github.com/Abraxas-365/authcore/pkg/logx"
	"github.com/Abraxas-365/authcore/pkg/notifx"
	"github.com/Abraxas-365/authcore/pkg/notifx/notifxconsole"
	"github.com/Abraxas-365/authcore/pkg/notifx/notifxses"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Container holds shared infrastructure and the wired handlers.
type Container struct {
	Config *config.Config

	// Infrastructure
	DB     *sqlx.DB
	Redis  *redis.Client
	Mailer *notifx.Client

	// Auth
	SessionMiddleware *auth.SessionMiddleware
	AuthHandlers      *authapi.AuthHandlers

	// Accounts
	AccountHandlers *accountapi.AccountHandlers
}

func NewContainer(ctx context.Context, cfg *config.Config) *Container {
	logx.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg}

	c.initInfrastructure(ctx)
	c.initModules()

	logx.Info("✅ Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure(ctx context.Context) {
	logx.Info("🏗️ Initializing infrastructure...")

	db, err := asyncx.RetryWithBackoff(ctx, startupBackoff("database"), func(ctx context.Context) (*sqlx.DB, error) {
		return database.Open(ctx, c.Config.Database)
	})
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	c.DB = db
	logx.Infof("  ✅ Database connected (%s)", c.Config.Database.Driver)

	if err := database.Migrate(ctx, db); err != nil {
		logx.Fatalf("Failed to migrate database: %v", err)
	}
	logx.Info("  ✅ Migrations applied")

	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	_, err = asyncx.RetryWithBackoff(ctx, startupBackoff("redis"), func(ctx context.Context) (string, error) {
		return c.Redis.Ping(ctx).Result()
	})
	if err != nil {
		logx.Fatalf("Failed to connect to Redis: %v (Redis is required)", err)
	}
	logx.Info("  ✅ Redis connected")

	c.initMailer(ctx)

	logx.Info("✅ Infrastructure initialized")
}

// startupBackoff retries a dependency that may still be starting.
func startupBackoff(dependency string) asyncx.Backoff {
	return asyncx.Backoff{
		Attempts:     5,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			logx.WithFields(logx.Fields{
				"dependency": dependency,
				"attempt":    attempt,
				"wait":       wait.String(),
			}).WithError(err).Warn("dependency unavailable, retrying")
		},
	}
}

func (c *Container) initMailer(ctx context.Context) {
	nc := c.Config.Notifx
	from := notifx.FormatAddress(nc.FromName, nc.FromAddress)

	var defaults []notifx.Option
	if nc.ConfigurationSet != "" {
		defaults = append(defaults, notifx.WithConfigID(nc.ConfigurationSet))
	}

	switch nc.Provider {
	case "ses":
		awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(nc.AWSRegion))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		c.Mailer = notifx.NewClient(notifxses.NewSESProvider(ses.NewFromConfig(awsCfg)), from, defaults...)
		logx.Infof("  ✅ SES mailer configured (region: %s)", nc.AWSRegion)

	case "console":
		c.Mailer = notifx.NewClient(notifxconsole.NewConsoleProvider(), from, defaults...)
		logx.Info("  ✅ Console mailer configured")

	default:
		logx.Fatalf("Unknown NOTIFX_PROVIDER: %s (use 'console' or 'ses')", nc.Provider)
	}
}

// ---------------------------------------------------------------------------
// Modules
// ---------------------------------------------------------------------------

func (c *Container) initModules() {
	logx.Info("📦 Initializing modules...")

	ac := c.Config.Auth
	sc := c.Config.Server

	accounts := accountinfra.NewSQLAccountRepository(c.DB)
	hasher := password.NewHasher(password.DefaultParams)

	signer := auth.NewJWTService(ac.JWTSecret, ac.JWTIssuer)
	audit := authinfra.NewLogxAuditService()
	minter := auth.NewMinter(signer, authinfra.NewRedisRefreshStore(c.Redis), accounts, auth.MinterConfig{
		Issuer:             ac.JWTIssuer,
		AccessTokenTTL:     ac.AccessTokenTTL,
		RefreshTokenTTL:    ac.RefreshTokenTTL,
		RefreshTokenLength: ac.RefreshTokenLength,
		CSRFTokenLength:    ac.CSRFTokenLength,
	})

	verifier, err := authsrv.NewVerifier(accounts, hasher)
	if err != nil {
		logx.Fatalf("Failed to initialize credential verifier: %v", err)
	}
	redirects := redirect.NewValidator(sc.SiteURL, ac.RedirectAllowList, sc.DevMode)

	login := authsrv.NewLoginService(
		verifier,
		authsrv.NewCodeIssuer(accounts, ac.CodeLength),
		minter,
		redirects,
		audit,
		authsrv.LoginConfig{
			AccessTokenTTL:  ac.AccessTokenTTL,
			LoginPage:       ac.LoginPage,
			ProfilePage:     ac.ProfilePage,
			ServesPublicDir: sc.PublicDir != "",
		},
	)

	c.SessionMiddleware = auth.NewSessionMiddleware(signer)
	c.AuthHandlers = authapi.NewAuthHandlers(
		login,
		authsrv.NewStatusService(signer),
		authsrv.NewSessionService(minter, audit),
		redirects,
		c.SessionMiddleware,
		auth.CookieConfig{
			AccessTTL:  ac.AccessTokenTTL,
			RefreshTTL: ac.RefreshTokenTTL,
			Secure:     !sc.DevMode,
		},
	)
	logx.Info("  ✅ Auth module initialized")

	accountService := accountsrv.NewAccountService(
		accounts,
		hasher,
		password.PolicyFromConfig(ac.Password),
		c.Mailer,
		sc.SiteURL,
	)
	c.AccountHandlers = accountapi.NewAccountHandlers(accountService, c.SessionMiddleware, ac.LoginPage)
	logx.Info("  ✅ Account module initialized")
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		} else {
			logx.Info("  ✅ Database connection closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("  ✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup complete")
}
