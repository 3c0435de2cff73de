package leave

type CreateLeaveRequest struct {
	Type      string  `json:"type" binding:"required,oneof=sick vacation personal other"`
	StartDate string  `json:"start_date" binding:"required"`
	EndDate   string  `json:"end_date" binding:"required"`
	Reason    *string `json:"reason" binding:"omitempty,max=1000"`
}

type UpdateLeaveRequest struct {
	Type      string  `json:"type" binding:"required,oneof=sick vacation personal other"`
	StartDate string  `json:"start_date" binding:"required"`
	EndDate   string  `json:"end_date" binding:"required"`
	Reason    *string `json:"reason" binding:"omitempty,max=1000"`
}

type UpdateStatusRequest struct {
	Status string  `json:"status" binding:"required,oneof=approved rejected"`
	Notes  *string `json:"notes" binding:"omitempty,max=1000"`
}

type ListFilter struct {
	Status   string
	Page     int
	PageSize int
	// UserID limits the listing to one requester when set.
	UserID string
}

type LeaveResponse struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	UserName   string  `json:"user_name"`
	Type       string  `json:"type"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	TotalDays  int     `json:"total_days"`
	Reason     *string `json:"reason"`
	Status     string  `json:"status"`
	Notes      *string `json:"notes"`
	ReviewedBy *string `json:"reviewed_by,omitempty"`
	ReviewedAt *string `json:"reviewed_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
}
