// Package password validates candidate passwords against a configurable
// policy and hashes them with argon2id.
package password

import (
	"unicode"
	"unicode/utf8"

	"github.com/Abraxas-365/authcore/pkg/config"
)

// Policy is the set of rules a new password must satisfy.
type Policy struct {
	MinLength        int
	MaxLength        int
	RequireMixedCase bool
	RequireDigits    bool
	RequireSpecial   bool
}

// DefaultPolicy is 8..128 characters with no class requirements.
func DefaultPolicy() Policy {
	return Policy{MinLength: 8, MaxLength: 128}
}

// PolicyFromConfig converts the loaded configuration into a Policy.
func PolicyFromConfig(cfg config.PasswordConfig) Policy {
	return Policy{
		MinLength:        cfg.MinLength,
		MaxLength:        cfg.MaxLength,
		RequireMixedCase: cfg.RequireMixedCase,
		RequireDigits:    cfg.RequireDigits,
		RequireSpecial:   cfg.RequireSpecial,
	}
}

// Validate checks password against confirmation and the policy. Lengths are
// counted in characters, not bytes.
func Validate(password, confirmation string, policy Policy) error {
	if password != confirmation {
		return ErrRegistry.New(CodeMismatch)
	}

	length := utf8.RuneCountInString(password)
	if length < policy.MinLength {
		return ErrRegistry.New(CodeTooShort).WithDetail("min_length", policy.MinLength)
	}
	if policy.MaxLength > 0 && length > policy.MaxLength {
		return ErrRegistry.New(CodeTooLong).WithDetail("max_length", policy.MaxLength)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r):
			special = true
		}
	}

	var missing []string
	if policy.RequireMixedCase && !(upper && lower) {
		missing = append(missing, "mixed_case")
	}
	if policy.RequireDigits && !digit {
		missing = append(missing, "digits")
	}
	if policy.RequireSpecial && !special {
		missing = append(missing, "special")
	}
	if len(missing) > 0 {
		return ErrRegistry.New(CodeMissingClass).WithDetail("missing", missing)
	}

	return nil
}
