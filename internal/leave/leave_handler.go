package leave

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/faisallbhr/simple-hris/internal/middleware"
	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
	"github.com/faisallbhr/simple-hris/internal/shared/audit"
	"github.com/faisallbhr/simple-hris/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	audit   audit.Logger
	logger  *zap.Logger
}

func NewHandler(service Service, auditLogger audit.Logger, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	if auditLogger == nil {
		auditLogger = audit.Discard{}
	}
	return &Handler{service: service, audit: auditLogger, logger: l}
}

func getActorID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserIDValidated)
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, entry, err := h.service.Create(ctx, getActorID(c), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.audit.Log(ctx, entry)

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	filter := ListFilter{
		Status:   strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Page:     page,
		PageSize: pageSize,
	}

	resp, total, err := h.service.GetAll(c.Request.Context(), getActorID(c), filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) GetById(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), getActorID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var req UpdateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, entry, err := h.service.Update(ctx, getActorID(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.audit.Log(ctx, entry)

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	ctx := c.Request.Context()

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, entry, err := h.service.UpdateStatus(ctx, getActorID(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.audit.Log(ctx, entry)

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	entry, err := h.service.Delete(ctx, getActorID(c), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.audit.Log(ctx, entry)

	response.Success(c, http.StatusOK, gin.H{"id": id, "message": "Leave request deleted successfully."}, nil)
}
