package leave

import (
	"github.com/faisallbhr/simple-hris/internal/middleware"
	"github.com/faisallbhr/simple-hris/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.GET("", middleware.RBACAuthorize(rbacService, rbac.PermViewLeaves), handler.GetAll)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.PermViewLeaves), handler.GetById)
		leaves.POST("", middleware.RBACAuthorize(rbacService, rbac.PermCreateLeaves), handler.Create)
		leaves.PUT("/:id", middleware.RBACAuthorize(rbacService, rbac.PermEditLeaves), handler.Update)
		leaves.PATCH("/:id/status", middleware.RBACAuthorize(rbacService, rbac.PermUpdateStatusLeaves), handler.UpdateStatus)
		leaves.DELETE("/:id", middleware.RBACAuthorize(rbacService, rbac.PermDeleteLeaves), handler.Delete)
	}
}
