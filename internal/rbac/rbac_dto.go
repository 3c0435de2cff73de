package rbac

type RoleResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
	CreatedAt   string   `json:"created_at"`
}

type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required,max=100"`
	Permissions []string `json:"permissions"`
}

type UpdateRoleRequest struct {
	Name        string   `json:"name" binding:"required,max=100"`
	Permissions []string `json:"permissions"`
}

type PermissionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
