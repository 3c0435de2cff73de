package user

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/faisallbhr/simple-hris/internal/middleware"
	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
	"github.com/faisallbhr/simple-hris/internal/shared/audit"
	"github.com/faisallbhr/simple-hris/internal/shared/response"
	usererrors "github.com/faisallbhr/simple-hris/internal/user/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	audit   audit.Logger
	logger  *zap.Logger
}

func NewHandler(service Service, auditLogger audit.Logger, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("user.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.handler")
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
		h.logger.Error("user request failed", zap.String("path", c.FullPath()), zap.Error(err))
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
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"), trashed)
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

func (h *Handler) GetOptions(c *gin.Context) {
	resp, err := h.service.GetOptions(c.Request.Context(), c.Query("query"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateUserRequest
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

	var req UpdateUserRequest
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

func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	entry, err := h.service.Delete(ctx, getActorID(c), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.audit.Log(ctx, entry)

	response.Success(c, http.StatusOK, gin.H{"id": id, "message": "User deleted successfully."}, nil)
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
	id := c.Param("id")

	entry, err := h.service.ForceDelete(ctx, getActorID(c), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.audit.Log(ctx, entry)

	response.Success(c, http.StatusOK, gin.H{"id": id, "message": "User deleted permanently."}, nil)
}

func (h *Handler) Export(c *gin.Context) {
	filter, err := parseListFilter(c, false)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var columns []string
	if raw := c.Query("columns"); raw != "" {
		columns = strings.Split(raw, ",")
	}

	file, err := h.service.Export(c.Request.Context(), ExportRequest{
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

func (h *Handler) Import(c *gin.Context) {
	ctx := c.Request.Context()

	header, err := c.FormFile("file")
	if err != nil {
		h.writeServiceError(c, usererrors.ErrImportFileRequired)
		return
	}
	if header.Size > MaxImportSize {
		h.writeServiceError(c, usererrors.ErrImportFileTooLarge)
		return
	}
	src, err := header.Open()
	if err != nil {
		h.writeServiceError(c, usererrors.ErrImportFileRequired)
		return
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, MaxImportSize+1))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	entry, err := h.service.RequestImport(ctx, getActorID(c), ImportFile{
		FileName: header.Filename,
		Size:     header.Size,
		Content:  content,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.audit.Log(ctx, entry)

	response.Success(c, http.StatusAccepted, gin.H{"message": ImportQueuedMessage}, nil)
}
