package rbacerrors

import (
	"net/http"

	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
)

var (
	ErrRoleNotFound = apperror.New(
		apperror.CodeNotFound,
		"role not found",
		http.StatusNotFound,
	)
	ErrRoleNameTaken = apperror.New(
		apperror.CodeConflict,
		"role name has already been taken",
		http.StatusConflict,
	)
	ErrUnknownPermission = apperror.New(
		apperror.CodeInvalidInput,
		"one or more permissions do not exist",
		http.StatusBadRequest,
	)
	ErrProtectedRole = apperror.New(
		apperror.CodeInvalidState,
		"built-in roles cannot be renamed or deleted",
		http.StatusBadRequest,
	)
)
