package auth

import "adbond/internal/pkg/apperr"

var (
	ErrInvalidCredentials  = apperr.New(apperr.KindUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	ErrTempPasswordExpired = apperr.New(apperr.KindForbidden, "TEMP_PASSWORD_EXPIRED", "Temporary password has expired, contact support for a new one")
	ErrUnauthorized        = apperr.New(apperr.KindUnauthorized, "UNAUTHORIZED", "Authentication required")
)
