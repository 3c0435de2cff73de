package payrollerrors

import (
	"net/http"

	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"period_end must be after or equal to period_start",
		http.StatusBadRequest,
	)
	ErrInvalidDetails = apperror.New(
		apperror.CodeInvalidInput,
		"details must be a valid JSON object",
		http.StatusBadRequest,
	)
	ErrNegativeBaseSalary = apperror.New(
		apperror.CodeInvalidInput,
		"base_salary cannot be negative",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"the selected employee does not exist",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payroll status filter",
		http.StatusBadRequest,
	)
	ErrInvalidSort = apperror.New(
		apperror.CodeInvalidInput,
		"invalid sort column",
		http.StatusBadRequest,
	)
	ErrInvalidExportColumn = apperror.New(
		apperror.CodeInvalidInput,
		"invalid export column",
		http.StatusBadRequest,
	)
	ErrInvalidExportFormat = apperror.New(
		apperror.CodeInvalidInput,
		"export format must be xlsx or csv",
		http.StatusBadRequest,
	)

	ErrPayrollNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll not found",
		http.StatusNotFound,
	)
	ErrPayrollOverlap = apperror.New(
		apperror.CodeConflict,
		"Payroll for this period already exists.",
		http.StatusConflict,
	)
	ErrUpdateOverlap = apperror.New(
		apperror.CodeConflict,
		"Another payroll for this period already exists.",
		http.StatusConflict,
	)
	ErrRestoreOverlap = apperror.New(
		apperror.CodeConflict,
		"Payroll for the same employee already exists.",
		http.StatusConflict,
	)

	ErrNotProcessor = apperror.New(
		apperror.CodeForbidden,
		"Only the processor of this payroll can update it.",
		http.StatusForbidden,
	)
	ErrPayrollTrashed = apperror.New(
		apperror.CodeInvalidState,
		"payroll is in the trash",
		http.StatusBadRequest,
	)
	ErrPayrollNotTrashed = apperror.New(
		apperror.CodeInvalidState,
		"payroll is not in the trash",
		http.StatusBadRequest,
	)
	ErrUpdateOnlyPending = apperror.New(
		apperror.CodeInvalidState,
		"Only pending payrolls can be updated.",
		http.StatusBadRequest,
	)
	ErrStatusOnlyPending = apperror.New(
		apperror.CodeInvalidState,
		"Only pending payrolls can be approved or rejected.",
		http.StatusBadRequest,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid payroll status transition",
		http.StatusBadRequest,
	)
	ErrGenerateOnlyApproved = apperror.New(
		apperror.CodeInvalidState,
		"Only approved payrolls can be generated.",
		http.StatusBadRequest,
	)
	ErrSlipAlreadyGenerated = apperror.New(
		apperror.CodeInvalidState,
		"Pay slip can only be generated once.",
		http.StatusBadRequest,
	)
	ErrProofOnlyApproved = apperror.New(
		apperror.CodeInvalidState,
		"Only approved payrolls can be updated.",
		http.StatusBadRequest,
	)
	ErrProofRequiresSlip = apperror.New(
		apperror.CodeInvalidState,
		"Only generated payrolls can be updated.",
		http.StatusBadRequest,
	)
	ErrProofAlreadyUploaded = apperror.New(
		apperror.CodeInvalidState,
		"Payment proof has already been uploaded.",
		http.StatusBadRequest,
	)
	ErrDeleteOnlyPending = apperror.New(
		apperror.CodeInvalidState,
		"Only pending payrolls can be deleted.",
		http.StatusBadRequest,
	)

	ErrPaymentProofRequired = apperror.New(
		apperror.CodeInvalidInput,
		"The payment proof field is required.",
		http.StatusBadRequest,
	)
	ErrPaymentProofNotPDF = apperror.New(
		apperror.CodeInvalidInput,
		"The payment proof must be a file of type: pdf.",
		http.StatusBadRequest,
	)
	ErrPaymentProofTooSmall = apperror.New(
		apperror.CodeInvalidInput,
		"The payment proof must be at least 100KB.",
		http.StatusBadRequest,
	)
	ErrPaymentProofTooLarge = apperror.New(
		apperror.CodeInvalidInput,
		"The payment proof may not be greater than 500KB.",
		http.StatusBadRequest,
	)
	ErrPaymentProofNotFound = apperror.New(
		apperror.CodeNotFound,
		"payment proof not found",
		http.StatusNotFound,
	)

	ErrSlipGenerationFailed = apperror.New(
		apperror.CodeInternalError,
		"An error occurred while generating the pay slip.",
		http.StatusInternalServerError,
	)
	ErrProofStorageFailed = apperror.New(
		apperror.CodeInternalError,
		"An error occurred while storing the payment proof.",
		http.StatusInternalServerError,
	)
)
