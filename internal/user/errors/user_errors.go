package usererrors

import (
	"net/http"

	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)

	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user ID",
		http.StatusBadRequest,
	)

	ErrEmailTaken = apperror.New(
		apperror.CodeConflict,
		"The email has already been taken.",
		http.StatusConflict,
	)

	ErrRestoreEmailTaken = apperror.New(
		apperror.CodeConflict,
		"User with this email already exists.",
		http.StatusConflict,
	)

	ErrDepartmentNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"The selected department id is invalid.",
		http.StatusBadRequest,
	)

	ErrManagerNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"The selected manager id is invalid.",
		http.StatusBadRequest,
	)

	ErrSelfManager = apperror.New(
		apperror.CodeInvalidInput,
		"A user cannot be their own manager.",
		http.StatusBadRequest,
	)

	ErrInvalidRole = apperror.New(
		apperror.CodeInvalidInput,
		"The selected roles is invalid.",
		http.StatusBadRequest,
	)

	ErrCannotDeleteSelf = apperror.New(
		apperror.CodeInvalidState,
		"You cannot delete your own account.",
		http.StatusBadRequest,
	)

	ErrUserTrashed = apperror.New(
		apperror.CodeInvalidState,
		"User is in the trash.",
		http.StatusBadRequest,
	)

	ErrUserNotTrashed = apperror.New(
		apperror.CodeInvalidState,
		"User is not in the trash.",
		http.StatusBadRequest,
	)

	ErrInvalidSort = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid sort column",
		http.StatusBadRequest,
	)

	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)

	ErrInvalidExportColumn = apperror.New(
		apperror.CodeInvalidInput,
		"The selected columns is invalid.",
		http.StatusBadRequest,
	)

	ErrInvalidExportFormat = apperror.New(
		apperror.CodeInvalidInput,
		"The selected format is invalid.",
		http.StatusBadRequest,
	)

	ErrImportFileRequired = apperror.New(
		apperror.CodeInvalidInput,
		"The file field is required.",
		http.StatusBadRequest,
	)

	ErrImportFileType = apperror.New(
		apperror.CodeInvalidInput,
		"The file field must be a file of type: xlsx, csv.",
		http.StatusBadRequest,
	)

	ErrImportFileTooLarge = apperror.New(
		apperror.CodeInvalidInput,
		"The file field must not be greater than 10240 kilobytes.",
		http.StatusBadRequest,
	)

	ErrImportQueueFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to queue the import. Please try again.",
		http.StatusInternalServerError,
	)
)
