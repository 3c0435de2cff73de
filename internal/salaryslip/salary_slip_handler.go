package salaryslip

import (
	"net/http"
	"strconv"

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
	l := zap.L().Named("salaryslip.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salaryslip.handler")
	}
	if auditLogger == nil {
		auditLogger = audit.Discard{}
	}
	return &Handler{service: service, audit: auditLogger, logger: l}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("salary slip request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) ListMine(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	resp, err := h.service.ListMine(c.Request.Context(), c.GetString(middleware.ContextUserIDValidated), page, pageSize)
	if err != nil {
		h.writeError(c, err)
		return
	}

	meta := response.NewPaginationMeta(resp.Total, page, pageSize)
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) Download(c *gin.Context) {
	ctx := c.Request.Context()
	file, entry, err := h.service.Download(ctx, c.GetString(middleware.ContextUserIDValidated), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.audit.Log(ctx, entry)

	response.Attachment(c, file.FileName, file.ContentType, file.Content)
}
