package payroll

import (
	"encoding/json"
	"time"
)

type CreatePayrollRequest struct {
	EmployeeID  string          `json:"employee_id" binding:"required,uuid"`
	PeriodStart string          `json:"period_start" binding:"required"`
	PeriodEnd   string          `json:"period_end" binding:"required"`
	BaseSalary  *int64          `json:"base_salary" binding:"required"`
	Details     json.RawMessage `json:"details"`
}

type UpdatePayrollRequest = CreatePayrollRequest

type UpdateStatusRequest struct {
	Status string  `json:"status" binding:"required,oneof=approved rejected"`
	Notes  *string `json:"notes" binding:"omitempty,max=1000"`
}

// ListFilter drives list and export queries.
type ListFilter struct {
	Search   string
	Statuses []string
	DateFrom *time.Time
	DateTo   *time.Time
	Trashed  bool

	// ProcessedBy is set by the service, never from the query string.
	ProcessedBy string
	Sort        string
	Direction   string
	Page        int
	PageSize    int
}

type ExportRequest struct {
	Format  string
	Columns []string
	Filter  ListFilter
}

type PaymentProofFile struct {
	FileName string
	Size     int64
	Content  []byte
}

type FileDownload struct {
	FileName    string
	ContentType string
	Content     []byte
}

type PersonResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
}

type ComponentResponse struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type BreakdownResponse struct {
	Bonus           string              `json:"bonus"`
	Allowances      []ComponentResponse `json:"allowances"`
	Deductions      []ComponentResponse `json:"deductions"`
	TotalAllowances string              `json:"total_allowances"`
	TotalDeductions string              `json:"total_deductions"`
}

type PayrollResponse struct {
	ID              string             `json:"id"`
	Employee        PersonResponse     `json:"employee"`
	ProcessedBy     PersonResponse     `json:"processed_by"`
	PeriodStart     string             `json:"period_start"`
	PeriodEnd       string             `json:"period_end"`
	BaseSalary      int64              `json:"base_salary"`
	Details         json.RawMessage    `json:"details"`
	Breakdown       *BreakdownResponse `json:"breakdown,omitempty"`
	NetSalary       int64              `json:"net_salary"`
	Status          string             `json:"status"`
	Notes           *string            `json:"notes"`
	HasPaymentProof bool               `json:"has_payment_proof"`
	PaidAt          *string            `json:"paid_at"`
	IsGenerated     bool               `json:"is_generated"`
	Lifecycle       Lifecycle          `json:"lifecycle"`
	CreatedAt       string             `json:"created_at"`
	UpdatedAt       string             `json:"updated_at"`
	DeletedAt       *string            `json:"deleted_at,omitempty"`
}

type DeleteResponse struct {
	ID        string    `json:"id"`
	Lifecycle Lifecycle `json:"lifecycle"`
}
