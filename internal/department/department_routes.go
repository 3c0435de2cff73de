package department

import (
	"github.com/faisallbhr/simple-hris/internal/middleware"
	"github.com/faisallbhr/simple-hris/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	rbacService rbac.Service,
) {
	departments := r.Group("/departments")

	departments.Use(middleware.AuthMiddleware())

	{
		departments.GET("", middleware.RBACAuthorize(rbacService, rbac.PermViewDepartments), h.GetAll)
		departments.POST("", middleware.RBACAuthorize(rbacService, rbac.PermManageDepartments), h.Create)
		departments.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.PermViewDepartments), h.GetById)
		departments.PUT("/:id", middleware.RBACAuthorize(rbacService, rbac.PermManageDepartments), h.Update)
		departments.DELETE("/:id", middleware.RBACAuthorize(rbacService, rbac.PermManageDepartments), h.Delete)
	}
}
