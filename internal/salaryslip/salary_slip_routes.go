package salaryslip

import (
	"github.com/faisallbhr/simple-hris/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	slips := r.Group("/salary-slips")
	slips.Use(middleware.AuthMiddleware())
	{
		slips.GET("", handler.ListMine)
		slips.GET("/:id/download", handler.Download)
	}
}
