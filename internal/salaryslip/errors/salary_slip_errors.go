package salarysliperrors

import (
	"net/http"

	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
)

var (
	ErrSalarySlipNotFound = apperror.New(
		apperror.CodeNotFound,
		"salary slip not found",
		http.StatusNotFound,
	)
	ErrInvalidSalarySlipID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid salary slip id",
		http.StatusBadRequest,
	)
	ErrRenderFailed = apperror.New(
		apperror.CodeInternalError,
		"An error occurred while generating the pay slip.",
		http.StatusInternalServerError,
	)
)
