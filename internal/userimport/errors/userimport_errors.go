package userimporterrors

import (
	"net/http"

	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
)

var (
	ErrInvalidJob = apperror.New(
		apperror.CodeInvalidInput,
		"Import job is missing its file or submitter",
		http.StatusBadRequest,
	)

	ErrImportFileMissing = apperror.New(
		apperror.CodeNotFound,
		"Import file not found",
		http.StatusNotFound,
	)
)
