package auth

import (
	"net/http"
	"time"

	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
	platform "github.com/faisallbhr/simple-hris/internal/shared/request"
	"github.com/faisallbhr/simple-hris/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service      Service
	secureCookie bool
	ttl          TokenTTL
	logger       *zap.Logger
}

func NewHandler(s Service, secureCookie bool, ttl TokenTTL, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("auth.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.handler")
	}
	return &Handler{service: s, secureCookie: secureCookie, ttl: ttl, logger: l}
}

func (ctrl *Handler) setCookie(c *gin.Context, name, value string, maxAge time.Duration) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   ctrl.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (ctrl *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, apperror.MapValidationError(err))
		return
	}

	clientType := platform.ResolveClientType(c.GetHeader("X-Client-Type"), c.GetHeader("User-Agent"))

	accessToken, refreshToken, userResp, err := ctrl.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		ctrl.logger.Info("login rejected", zap.String("email", req.Email), zap.String("client_ip", c.ClientIP()))
		response.FromError(c, err)
		return
	}

	if platform.IsWebClient(clientType) {
		ctrl.setCookie(c, "access_token", accessToken, ctrl.ttl.Access)
		ctrl.setCookie(c, "refresh_token", refreshToken, ctrl.ttl.Refresh)
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":          userResp,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	}, nil)
}

func (ctrl *Handler) Me(c *gin.Context) {
	userResp, err := ctrl.service.GetMe(c.Request.Context(), c.GetString("user_id_validated"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, userResp, nil)
}

func (ctrl *Handler) Logout(c *gin.Context) {
	ctrl.setCookie(c, "access_token", "", -time.Second)
	ctrl.setCookie(c, "refresh_token", "", -time.Second)

	response.Success(c, http.StatusOK, gin.H{"message": "Logged out successfully."}, nil)
}

func (ctrl *Handler) RefreshToken(c *gin.Context) {
	clientType := platform.ResolveClientType(c.GetHeader("X-Client-Type"), c.GetHeader("User-Agent"))
	isWeb := platform.IsWebClient(clientType)

	var refreshToken string
	if isWeb {
		refreshToken, _ = c.Cookie("refresh_token")
	}
	if refreshToken == "" {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.FromError(c, apperror.MapValidationError(err))
			return
		}
		refreshToken = req.RefreshToken
	}

	newAccess, newRefresh, userResp, err := ctrl.service.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		response.FromError(c, err)
		return
	}

	if isWeb {
		ctrl.setCookie(c, "access_token", newAccess, ctrl.ttl.Access)
		ctrl.setCookie(c, "refresh_token", newRefresh, ctrl.ttl.Refresh)
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":          userResp,
		"access_token":  newAccess,
		"refresh_token": newRefresh,
	}, nil)
}
