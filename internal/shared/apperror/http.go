package apperror

import (
	"errors"
	"net/http"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// ToHTTP resolves any error to the payload written by handlers. Errors that
// are not *AppError are reported as INTERNAL_ERROR without leaking their text.
func ToHTTP(err error) HTTPError {
	var fieldErrs *FieldErrors
	if errors.As(err, &fieldErrs) {
		return HTTPError{
			Status:  http.StatusUnprocessableEntity,
			Code:    CodeInvalidInput,
			Message: fieldErrs.Error(),
			Details: fieldErrs.Fields,
		}
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return HTTPError{
			Status:  status,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}

	return HTTPError{
		Status:  ErrInternal.HTTPStatus,
		Code:    ErrInternal.Code,
		Message: ErrInternal.Message,
	}
}
