package errors

import (
	stderrors "errors"
	"fmt"
)

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on code so wrapped sentinels compare equal with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(code, message string, cause ...error) *AppError {
	var c error
	if len(cause) > 0 {
		c = cause[0]
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   c,
	}
}

var (
	ErrConfigNotFound = &AppError{Code: "CONFIG_001", Message: "configuration not found"}
	ErrConfigInvalid  = &AppError{Code: "CONFIG_002", Message: "invalid configuration"}

	ErrUserNotFound   = &AppError{Code: "USER_001", Message: "user not found"}
	ErrUserExists     = &AppError{Code: "USER_002", Message: "user already exists"}
	ErrProfileInvalid = &AppError{Code: "USER_003", Message: "invalid profile"}
	ErrUserUpdate     = &AppError{Code: "USER_004", Message: "failed to update user"}

	ErrMealNotFound = &AppError{Code: "MEAL_001", Message: "meal not found"}
	ErrMealInvalid  = &AppError{Code: "MEAL_002", Message: "invalid meal"}

	ErrIntakeNotFound = &AppError{Code: "INTAKE_001", Message: "meal intake not found"}
	ErrIntakeInvalid  = &AppError{Code: "INTAKE_002", Message: "invalid meal intake"}
	ErrIntakeStorage  = &AppError{Code: "INTAKE_003", Message: "meal intake storage failure"}

	ErrMenuItemNotFound = &AppError{Code: "MENU_001", Message: "menu item not found"}
	ErrMenuItemInvalid  = &AppError{Code: "MENU_002", Message: "invalid menu item"}

	ErrRemoteUnavailable = &AppError{Code: "REMOTE_001", Message: "remote backend unavailable"}
	ErrRemoteRejected    = &AppError{Code: "REMOTE_002", Message: "remote backend rejected request"}

	ErrUnauthorized       = &AppError{Code: "AUTH_001", Message: "unauthorized"}
	ErrForbidden          = &AppError{Code: "AUTH_002", Message: "forbidden"}
	ErrInvalidCredentials = &AppError{Code: "AUTH_003", Message: "invalid email or password"}
	ErrSessionExpired     = &AppError{Code: "AUTH_004", Message: "session expired"}

	ErrNotFound   = &AppError{Code: "GEN_001", Message: "resource not found"}
	ErrBadRequest = &AppError{Code: "GEN_002", Message: "bad request"}
	ErrInternal   = &AppError{Code: "GEN_003", Message: "internal error"}
)

func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapAs wraps err with the code and message of a predefined error.
func WrapAs(sentinel *AppError, err error) *AppError {
	return Wrap(err, sentinel.Code, sentinel.Message)
}
