package rbac

const (
	PermViewUsers   = "view_users"
	PermCreateUsers = "create_users"
	PermEditUsers   = "edit_users"
	PermDeleteUsers = "delete_users"

	PermViewUsersTrash   = "view_users_trash"
	PermRestoreUsers     = "restore_users"
	PermDeleteUsersTrash = "delete_users_trash"

	PermViewRoles   = "view_roles"
	PermCreateRoles = "create_roles"
	PermEditRoles   = "edit_roles"
	PermDeleteRoles = "delete_roles"

	PermViewDepartments   = "view_departments"
	PermManageDepartments = "manage_departments"

	PermViewLeaves         = "view_leaves"
	PermCreateLeaves       = "create_leaves"
	PermEditLeaves         = "edit_leaves"
	PermUpdateStatusLeaves = "update_status_leaves"
	PermDeleteLeaves       = "delete_leaves"

	PermViewPayrolls         = "view_payrolls"
	PermCreatePayrolls       = "create_payrolls"
	PermEditPayrolls         = "edit_payrolls"
	PermUpdateStatusPayrolls = "update_status_payrolls"
	PermDeletePayrolls       = "delete_payrolls"
	PermViewPayrollsTrash    = "view_payrolls_trash"
	PermRestorePayrolls      = "restore_payrolls"
	PermDeletePayrollsTrash  = "delete_payrolls_trash"

	// PermViewAllPayrolls lifts the processed_by scope on payroll lists.
	PermViewAllPayrolls = "view_all_payrolls"

	PermViewSalarySlips = "view_salary_slips"
	PermDownloadPaySlip = "download_pay_slip"
)

const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleEmployee = "employee"
)

// AllPermissions lists every permission the application checks.
var AllPermissions = []string{
	PermViewUsers, PermCreateUsers, PermEditUsers, PermDeleteUsers,
	PermViewUsersTrash, PermRestoreUsers, PermDeleteUsersTrash,
	PermViewRoles, PermCreateRoles, PermEditRoles, PermDeleteRoles,
	PermViewDepartments, PermManageDepartments,
	PermViewLeaves, PermCreateLeaves, PermEditLeaves, PermUpdateStatusLeaves, PermDeleteLeaves,
	PermViewPayrolls, PermCreatePayrolls, PermEditPayrolls, PermUpdateStatusPayrolls,
	PermDeletePayrolls, PermViewPayrollsTrash, PermRestorePayrolls, PermDeletePayrollsTrash,
	PermViewAllPayrolls,
	PermViewSalarySlips, PermDownloadPaySlip,
}

// DefaultRolePermissions seeds a fresh database.
var DefaultRolePermissions = map[string][]string{
	RoleAdmin: AllPermissions,
	RoleHR: {
		PermViewUsers, PermCreateUsers, PermEditUsers,
		PermViewDepartments, PermManageDepartments,
		PermViewLeaves, PermUpdateStatusLeaves,
		PermViewPayrolls, PermCreatePayrolls, PermEditPayrolls, PermDeletePayrolls,
		PermViewPayrollsTrash, PermRestorePayrolls,
		PermViewSalarySlips, PermDownloadPaySlip,
	},
	RoleEmployee: {
		PermViewLeaves, PermCreateLeaves, PermEditLeaves, PermDeleteLeaves,
		PermViewSalarySlips, PermDownloadPaySlip,
	},
}
