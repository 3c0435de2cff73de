package rbac

import (
	"github.com/faisallbhr/simple-hris/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService Service) {
	roles := r.Group("/roles", middleware.AuthMiddleware())
	{
		roles.GET("", middleware.RBACAuthorize(rbacService, PermViewRoles), handler.ListRoles)
		roles.GET("/:id", middleware.RBACAuthorize(rbacService, PermViewRoles), handler.GetRole)
		roles.POST("", middleware.RBACAuthorize(rbacService, PermCreateRoles), handler.CreateRole)
		roles.PUT("/:id", middleware.RBACAuthorize(rbacService, PermEditRoles), handler.UpdateRole)
		roles.DELETE("/:id", middleware.RBACAuthorize(rbacService, PermDeleteRoles), handler.DeleteRole)
	}

	r.GET("/permissions",
		middleware.AuthMiddleware(),
		middleware.RBACAuthorize(rbacService, PermViewRoles),
		handler.ListPermissions,
	)

	r.POST("/rbac/enforce",
		middleware.AuthMiddleware(),
		middleware.RBACAuthorize(rbacService, PermViewRoles),
		handler.Enforce,
	)
}
