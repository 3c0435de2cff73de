package salaryslip

type SlipResponse struct {
	ID           string   `json:"id"`
	PayrollID    string   `json:"payroll_id"`
	EmployeeName string   `json:"employee_name"`
	SlipData     SlipData `json:"slip_data"`
	CreatedAt    string   `json:"created_at"`
}

type YearlyStats struct {
	TotalEarned int64 `json:"total_earned"`
	TotalSlips  int   `json:"total_slips"`
	LastPayment int64 `json:"last_payment"`
}

type ListResponse struct {
	Slips       []SlipResponse `json:"salary_slips"`
	YearlyStats YearlyStats    `json:"yearly_stats"`
	Total       int64          `json:"-"`
}

type FileDownload struct {
	FileName    string
	ContentType string
	Content     []byte
}
