package auth

import "parkly/internal/pkg/errs"

var (
	ErrInvalidCredentials = errs.Define(errs.ErrValidation, "INVALID_CREDENTIALS", "invalid email or password")
	ErrEmailAlreadyExists = errs.Define(errs.ErrConflict, "EMAIL_EXISTS", "this email is already registered")
	ErrUserNotFound       = errs.Define(errs.ErrNotFound, "USER_NOT_FOUND", "user not found")
	ErrWrongPassword      = errs.Define(errs.ErrForbidden, "WRONG_PASSWORD", "current password is incorrect")
	ErrPasswordUnchanged  = errs.Define(errs.ErrValidation, "PASSWORD_UNCHANGED", "new password must differ from the current one")
)
