package password

import "github.com/Abraxas-365/authcore/pkg/errx"

var ErrRegistry = errx.NewRegistry("PASSWORD")

var (
	CodeMismatch      = ErrRegistry.Register("MISMATCH", errx.TypeValidation, 0, "passwords don't match")
	CodeTooShort      = ErrRegistry.Register("TOO_SHORT", errx.TypeValidation, 0, "password too short")
	CodeTooLong       = ErrRegistry.Register("TOO_LONG", errx.TypeValidation, 0, "password too long")
	CodeMissingClass  = ErrRegistry.Register("MISSING_CHARACTER_CLASS", errx.TypeValidation, 0, "password does not meet complexity requirements")
	CodeMalformedHash = ErrRegistry.Register("MALFORMED_HASH", errx.TypeInternal, 0, "stored password hash is malformed")
)
