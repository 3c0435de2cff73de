package middleware

import (
	"errors"
	"strings"

	autherrors "github.com/faisallbhr/simple-hris/internal/auth/errors"
	"github.com/faisallbhr/simple-hris/internal/shared/contextutil"
	"github.com/faisallbhr/simple-hris/internal/shared/response"
	"github.com/faisallbhr/simple-hris/internal/shared/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextUserID          = "user_id"
	ContextUserIDValidated = "user_id_validated"
)

// AuthMiddleware accepts a bearer token or the access_token cookie and puts
// the authenticated user id on both the gin and the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}
		// websocket clients cannot set headers from the browser
		if tokenString == "" && c.IsWebsocket() {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			response.AbortWithError(c, autherrors.ErrTokenNotFound)
			return
		}

		claims, err := token.Parse(tokenString, token.TypeAccess)
		if err != nil {
			errObj := autherrors.ErrInvalidToken
			if errors.Is(err, token.ErrExpired) {
				errObj = autherrors.ErrTokenExpired
			}
			response.AbortWithError(c, errObj)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserIDValidated, claims.UserID)

		ctx := contextutil.WithUserID(c.Request.Context(), claims.UserID)
		ctx = contextutil.WithLogger(ctx, contextutil.GetLogger(ctx, nil).With(zap.String("user_id", claims.UserID)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
