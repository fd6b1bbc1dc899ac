package flow

// AuthError is an expected, user-recoverable rejection. It carries a
// stable code for the wire envelope and the exact user-visible message,
// so the calling UI can distinguish "try again" from "wait 30 minutes"
// from "contact an administrator". Store faults are never wrapped in an
// AuthError; they propagate as plain errors.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string { return e.Message }

var (
	// ErrMissingInput rejects a blank username or password before any
	// store access.
	ErrMissingInput = &AuthError{
		Code:    "missing_input",
		Message: "Username and password are required",
	}

	// ErrInvalidCredentials covers both a wrong secret and an unknown
	// username, intentionally indistinguishable to the caller.
	ErrInvalidCredentials = &AuthError{
		Code:    "invalid_credentials",
		Message: "Invalid username or password",
	}

	// ErrAccountDisabled is the static administrative flag, independent
	// of lockout.
	ErrAccountDisabled = &AuthError{
		Code:    "account_disabled",
		Message: "Account is locked, please contact administrator.",
	}

	// ErrAccountLocked rejects attempts against an already-locked
	// account.
	ErrAccountLocked = &AuthError{
		Code:    "account_locked",
		Message: "Account is temporarily locked due to too many failed login attempts",
	}

	// ErrLockoutTriggered rejects the failure that crossed the
	// threshold and opened the lock window.
	ErrLockoutTriggered = &AuthError{
		Code:    "account_locked",
		Message: "Too many failed login attempts. Account locked for 30 minutes",
	}

	// ErrLoginRequired covers a missing, unknown, or expired token. The
	// distinction is not exposed to the caller.
	ErrLoginRequired = &AuthError{
		Code:    "login_required",
		Message: "please log in first",
	}

	// ErrRateLimited rejects pre-auth when the request limiter trips.
	ErrRateLimited = &AuthError{
		Code:    "rate_limited",
		Message: "Too many login attempts, please try again later",
	}
)
