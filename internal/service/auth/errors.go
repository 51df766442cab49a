package auth

import "errors"

var (
	// ErrNameNotUnique indicates that the username is already registered.
	ErrNameNotUnique = errors.New("username already taken")

	// ErrUnknownUser indicates that no user has the given username.
	ErrUnknownUser = errors.New("unknown user")

	// ErrAuthentication indicates a failed login. It does not say whether the
	// username or the password was wrong.
	ErrAuthentication = errors.New("authentication failed")

	// ErrWeakCredentials indicates a username or password rejected by the credential policy.
	ErrWeakCredentials = errors.New("credentials do not meet requirements")
)
