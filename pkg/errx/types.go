package errx

// Type represents the category of error
type Type string

const (
	// TypeInternal represents internal server errors
	TypeInternal Type = "INTERNAL"

	// TypeValidation represents malformed or rejected input
	TypeValidation Type = "VALIDATION"

	// TypeAuthorization represents authentication failures
	TypeAuthorization Type = "AUTHORIZATION"

	// TypeForbidden represents an authenticated caller lacking permission
	TypeForbidden Type = "FORBIDDEN"

	// TypeNotFound represents resource not found errors
	TypeNotFound Type = "NOT_FOUND"

	// TypeConflict represents resource conflict errors (already exists)
	TypeConflict Type = "CONFLICT"

	// TypeUnsupportedMediaType represents a request body in a format the
	// endpoint does not accept
	TypeUnsupportedMediaType Type = "UNSUPPORTED_MEDIA_TYPE"

	// TypeInvariant represents a broken storage or domain invariant.
	// It is never recoverable at the request level.
	TypeInvariant Type = "INVARIANT"
)

// String returns the string representation of the error type
func (t Type) String() string {
	return string(t)
}

// HTTPStatus maps an error type to its transport status code.
func HTTPStatus(t Type) int {
	switch t {
	case TypeValidation:
		return 400
	case TypeAuthorization:
		return 401
	case TypeForbidden:
		return 403
	case TypeNotFound:
		return 404
	case TypeConflict:
		return 409
	case TypeUnsupportedMediaType:
		return 415
	case TypeInternal, TypeInvariant:
		return 500
	default:
		return 500
	}
}

// IsClientError reports whether status is in the 4xx class.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
