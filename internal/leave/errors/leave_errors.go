package leaveerrors

import (
	"net/http"

	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
)

var (
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"The end date must be a date after or equal to start date.",
		http.StatusBadRequest,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"A leave request already exists in the overlapping period.",
		http.StatusConflict,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave request not found",
		http.StatusNotFound,
	)
	ErrUpdateOnlyPending = apperror.New(
		apperror.CodeInvalidState,
		"Only pending leave requests can be updated.",
		http.StatusUnprocessableEntity,
	)
	ErrDeleteOnlyPending = apperror.New(
		apperror.CodeInvalidState,
		"Only pending leave requests can be deleted.",
		http.StatusUnprocessableEntity,
	)
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"You can only update your own leave requests.",
		http.StatusForbidden,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"The selected status is invalid.",
		http.StatusBadRequest,
	)
)
