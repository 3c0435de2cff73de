package user

import "time"

type CreateUserRequest struct {
	Name                 string   `json:"name" binding:"required,max=255"`
	Email                string   `json:"email" binding:"required,email,max=255"`
	Password             string   `json:"password" binding:"required,min=8"`
	PasswordConfirmation string   `json:"password_confirmation" binding:"required,eqfield=Password"`
	DepartmentID         *string  `json:"department_id" binding:"omitempty,uuid"`
	ManagerID            *string  `json:"manager_id" binding:"omitempty,uuid"`
	Roles                []string `json:"roles" binding:"required,min=1,dive,required"`
}

// UpdateUserRequest leaves roles untouched when Roles is omitted.
type UpdateUserRequest struct {
	Name         string   `json:"name" binding:"required,max=255"`
	Email        string   `json:"email" binding:"required,email,max=255"`
	DepartmentID *string  `json:"department_id" binding:"omitempty,uuid"`
	ManagerID    *string  `json:"manager_id" binding:"omitempty,uuid"`
	Roles        []string `json:"roles" binding:"omitempty,dive,required"`
}

type ListFilter struct {
	Search    string
	DateFrom  *time.Time
	DateTo    *time.Time
	Trashed   bool
	ExcludeID string
	Sort      string
	Direction string
	Page      int
	PageSize  int
}

type ExportRequest struct {
	Format  string
	Columns []string
	Filter  ListFilter
}

type ImportFile struct {
	FileName string
	Size     int64
	Content  []byte
}

type FileDownload struct {
	FileName    string
	ContentType string
	Content     []byte
}

type RefResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserResponse struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Department *RefResponse `json:"department"`
	Manager    *RefResponse `json:"manager"`
	Roles      []string     `json:"roles"`
	CreatedAt  string       `json:"created_at"`
	UpdatedAt  string       `json:"updated_at"`
	DeletedAt  *string      `json:"deleted_at,omitempty"`
}

type OptionResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
}
