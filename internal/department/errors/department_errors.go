package departmenterrors

import (
	"net/http"

	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
)

var (
	ErrDepartmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Department not found",
		http.StatusNotFound,
	)

	ErrInvalidDepartmentID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid department ID",
		http.StatusBadRequest,
	)

	ErrDepartmentNameTaken = apperror.New(
		apperror.CodeConflict,
		"The name has already been taken.",
		http.StatusConflict,
	)

	ErrDepartmentInUse = apperror.New(
		apperror.CodeConflict,
		"Department still has users assigned.",
		http.StatusConflict,
	)
)
