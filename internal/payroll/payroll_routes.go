package payroll

import (
	"github.com/faisallbhr/simple-hris/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RegisterRoutes mounts /payrolls. Permissions are checked by the service so
// that every caller, HTTP or not, goes through the same gate.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	payrolls := r.Group("/payrolls")
	payrolls.Use(middleware.AuthMiddleware())
	{
		payrolls.GET("", handler.GetAll)
		payrolls.GET("/export", handler.Export)
		payrolls.GET("/trash", handler.GetTrashed)
		payrolls.GET("/trash/:id", handler.GetTrashedById)
		payrolls.GET("/:id", handler.GetById)

		if redisClient != nil {
			payrolls.POST("", middleware.Idempotency(redisClient), handler.Create)
		} else {
			payrolls.POST("", handler.Create)
		}
		payrolls.POST("/:id/generate-slip", handler.GenerateSlip)
		payrolls.PUT("/:id", handler.Update)
		payrolls.PATCH("/:id/status", handler.UpdateStatus)
		payrolls.POST("/:id/payment-proof", handler.UploadPaymentProof)
		payrolls.GET("/:id/payment-proof", handler.DownloadPaymentProof)
		payrolls.DELETE("/:id", handler.Delete)

		payrolls.POST("/trash/:id/restore", handler.Restore)
		payrolls.DELETE("/trash/:id", handler.ForceDelete)
	}
}
