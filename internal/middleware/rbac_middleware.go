package middleware

import (
	"context"

	"github.com/faisallbhr/simple-hris/internal/domain"
	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
	"github.com/faisallbhr/simple-hris/internal/shared/contextutil"
	"github.com/faisallbhr/simple-hris/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RBACService is satisfied by anything that can answer an EnforceRequest.
type RBACService interface {
	Enforce(ctx context.Context, req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserIDValidated)
		if userID == "" {
			response.AbortWithError(c, apperror.ErrUnauthorized)
			return
		}

		ctx := c.Request.Context()
		allowed, err := service.Enforce(ctx, domain.EnforceRequest{
			UserID:     userID,
			Permission: permission,
		})
		if err != nil {
			contextutil.GetLogger(ctx, zap.L()).Error("rbac enforce failed",
				zap.String("permission", permission),
				zap.Error(err),
			)
			response.AbortWithError(c, apperror.ErrInternal.WithCause(err))
			return
		}

		if !allowed {
			response.AbortWithError(c, apperror.ErrForbidden)
			return
		}
		c.Next()
	}
}
