package department

import (
	"net/http"

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
	l := zap.L().Named("department.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("department.handler")
	}
	if auditLogger == nil {
		auditLogger = audit.Discard{}
	}
	return &Handler{service: service, audit: auditLogger, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("department request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, entry, err := h.service.Create(ctx, c.GetString(middleware.ContextUserIDValidated), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.audit.Log(ctx, entry)

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	resp, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetById(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var req UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, entry, err := h.service.Update(ctx, c.GetString(middleware.ContextUserIDValidated), c.Param("id"), req)
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

	entry, err := h.service.Delete(ctx, c.GetString(middleware.ContextUserIDValidated), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.audit.Log(ctx, entry)

	response.Success(c, http.StatusOK, gin.H{"id": id, "message": "Department deleted successfully."}, nil)
}
