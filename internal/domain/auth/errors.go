package auth

import "errors"

// ErrEmailExists indicates a duplicate email address.
var ErrEmailExists = errors.New("email already exists")

// Error codes carried by AppErrors from this package.
const (
	codeAuth              = "auth_error"
	codeInvalidToken      = "invalid_token"
	codeInvalidCreds      = "invalid_credentials"
	codeEmailExists       = "email_exists"
	codeNotConfigured     = "auth_not_configured"
	codeOAuthExchange     = "oauth_exchange_failed"
	codeInvalidOAuthInput = "invalid_request"
)
