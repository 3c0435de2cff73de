package user

import (
	"github.com/faisallbhr/simple-hris/internal/middleware"
	"github.com/faisallbhr/simple-hris/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb ...*redis.Client,
) {
	create := []gin.HandlerFunc{middleware.RBACAuthorize(rbacService, rbac.PermCreateUsers)}
	if len(rdb) > 0 && rdb[0] != nil {
		create = append(create, middleware.Idempotency(rdb[0]))
	}
	create = append(create, handler.Create)

	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("",
			middleware.RBACAuthorize(rbacService, rbac.PermViewUsers),
			handler.GetAll,
		)
		users.GET("/options",
			middleware.RateLimitByUser(3, 10),
			handler.GetOptions,
		)
		users.GET("/export",
			middleware.RBACAuthorize(rbacService, rbac.PermViewUsers),
			handler.Export,
		)
		users.GET("/trash",
			middleware.RBACAuthorize(rbacService, rbac.PermViewUsersTrash),
			handler.GetTrashed,
		)
		users.GET("/trash/:id",
			middleware.RBACAuthorize(rbacService, rbac.PermViewUsersTrash),
			handler.GetTrashedById,
		)
		users.GET("/:id",
			middleware.RBACAuthorize(rbacService, rbac.PermViewUsers),
			handler.GetById,
		)

		users.POST("", create...)
		users.POST("/import",
			middleware.RateLimitByUser(0.2, 2),
			middleware.RBACAuthorize(rbacService, rbac.PermCreateUsers),
			handler.Import,
		)
		users.PUT("/:id",
			middleware.RBACAuthorize(rbacService, rbac.PermEditUsers),
			handler.Update,
		)
		users.DELETE("/:id",
			middleware.RBACAuthorize(rbacService, rbac.PermDeleteUsers),
			handler.Delete,
		)

		users.POST("/trash/:id/restore",
			middleware.RBACAuthorize(rbacService, rbac.PermRestoreUsers),
			handler.Restore,
		)
		users.DELETE("/trash/:id",
			middleware.RBACAuthorize(rbacService, rbac.PermDeleteUsersTrash),
			handler.ForceDelete,
		)
	}
}
