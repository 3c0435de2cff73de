package payroll

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	payrollerrors "github.com/faisallbhr/simple-hris/internal/payroll/errors"
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
	l := zap.L().Named("payroll.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.handler")
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
	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("payroll request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func parseListFilter(c *gin.Context, trashed bool) (ListFilter, error) {
	filter := ListFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		Trashed:   trashed,
		Sort:      c.Query("sort"),
		Direction: strings.ToLower(c.DefaultQuery("direction", "desc")),
	}

	for _, raw := range c.QueryArray("status") {
		for _, status := range strings.Split(raw, ",") {
			if status = strings.TrimSpace(status); status != "" {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}

	var err error
	if filter.DateFrom, err = parseFilterDate(c.Query("date_from")); err != nil {
		return ListFilter{}, err
	}
	if filter.DateTo, err = parseFilterDate(c.Query("date_to")); err != nil {
		return ListFilter{}, err
	}

	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if filter.Page < 1 {
		filter.Page = 1
	}
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 10
	}
	return filter, nil
}

func (h *Handler) list(c *gin.Context, trashed bool) {
	filter, err := parseListFilter(c, trashed)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, total, err := h.service.GetAll(c.Request.Context(), getActorID(c), filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, filter.Page, filter.PageSize)
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) GetAll(c *gin.Context) {
	h.list(c, false)
}

func (h *Handler) GetTrashed(c *gin.Context) {
	h.list(c, true)
}

func (h *Handler) get(c *gin.Context, trashed bool) {
	resp, err := h.service.GetByID(c.Request.Context(), getActorID(c), c.Param("id"), trashed)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetById(c *gin.Context) {
	h.get(c, false)
}

func (h *Handler) GetTrashedById(c *gin.Context) {
	h.get(c, true)
}

func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreatePayrollRequest
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

func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var req UpdatePayrollRequest
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

func (h *Handler) GenerateSlip(c *gin.Context) {
	ctx := c.Request.Context()

	file, entry, err := h.service.GenerateSlip(ctx, getActorID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.audit.Log(ctx, entry)

	response.Attachment(c, file.FileName, file.ContentType, file.Content)
}

func (h *Handler) UploadPaymentProof(c *gin.Context) {
	ctx := c.Request.Context()

	header, err := c.FormFile("payment_proof")
	if err != nil {
		h.writeServiceError(c, payrollerrors.ErrPaymentProofRequired)
		return
	}
	src, err := header.Open()
	if err != nil {
		h.writeServiceError(c, payrollerrors.ErrPaymentProofRequired)
		return
	}
	defer src.Close()

	// One byte past the limit is enough to report the file as too large.
	content, err := io.ReadAll(io.LimitReader(src, maxPaymentProofSize+1))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, entry, err := h.service.UploadPaymentProof(ctx, getActorID(c), c.Param("id"), PaymentProofFile{
		FileName: header.Filename,
		Size:     header.Size,
		Content:  content,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.audit.Log(ctx, entry)

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) DownloadPaymentProof(c *gin.Context) {
	ctx := c.Request.Context()

	file, entry, err := h.service.DownloadPaymentProof(ctx, getActorID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.audit.Log(ctx, entry)

	response.Attachment(c, file.FileName, file.ContentType, file.Content)
}

func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	resp, entry, err := h.service.Delete(ctx, getActorID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.audit.Log(ctx, entry)

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Restore(c *gin.Context) {
	ctx := c.Request.Context()

	resp, entry, err := h.service.Restore(ctx, getActorID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.audit.Log(ctx, entry)

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ForceDelete(c *gin.Context) {
	ctx := c.Request.Context()

	resp, entry, err := h.service.ForceDelete(ctx, getActorID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.audit.Log(ctx, entry)

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Export(c *gin.Context) {
	filter, err := parseListFilter(c, c.Query("trashed") == "true")
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var columns []string
	if raw := c.Query("columns"); raw != "" {
		columns = strings.Split(raw, ",")
	}

	file, err := h.service.Export(c.Request.Context(), getActorID(c), ExportRequest{
		Format:  c.DefaultQuery("format", "xlsx"),
		Columns: columns,
		Filter:  filter,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Attachment(c, file.FileName, file.ContentType, file.Content)
}
