package leave_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/faisallbhr/simple-hris/internal/leave"
	leaveerrors "github.com/faisallbhr/simple-hris/internal/leave/errors"
	leaveMock "github.com/faisallbhr/simple-hris/internal/leave/mock"
	"github.com/faisallbhr/simple-hris/internal/middleware"
	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
	"github.com/faisallbhr/simple-hris/internal/shared/audit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testActorID = "11111111-1111-1111-1111-111111111111"

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Meta  json.RawMessage `json:"meta"`
	Error *struct {
		Code    string              `json:"code"`
		Message string              `json:"message"`
		Details map[string][]string `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

type recordingAudit struct {
	entries []audit.Entry
}

func (r *recordingAudit) Log(_ context.Context, e audit.Entry) {
	r.entries = append(r.entries, e)
}

func setupLeaveRouter(svc leave.Service, auditLogger audit.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	apperror.Init()

	h := leave.NewHandler(svc, auditLogger)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDValidated, testActorID)
		c.Next()
	})
	r.GET("/leaves", h.GetAll)
	r.GET("/leaves/:id", h.GetById)
	r.POST("/leaves", h.Create)
	r.PUT("/leaves/:id", h.Update)
	r.PATCH("/leaves/:id/status", h.UpdateStatus)
	r.DELETE("/leaves/:id", h.Delete)
	return r
}

func TestLeaveHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := leaveMock.NewMockService(ctrl)
		rec := &recordingAudit{}

		svc.EXPECT().
			Create(gomock.Any(), testActorID, leave.CreateLeaveRequest{Type: "sick", StartDate: "2026-05-04", EndDate: "2026-05-05"}).
			Return(leave.LeaveResponse{ID: "l-1", Status: "pending"}, audit.Entry{Action: "created"}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(`{"type":"sick","start_date":"2026-05-04","end_date":"2026-05-05"}`))
		req.Header.Set("Content-Type", "application/json")
		setupLeaveRouter(svc, rec).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Len(t, rec.entries, 1)
	})

	t.Run("unknown type", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := leaveMock.NewMockService(ctrl)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(`{"type":"holiday","start_date":"2026-05-04","end_date":"2026-05-05"}`))
		req.Header.Set("Content-Type", "application/json")
		setupLeaveRouter(svc, nil).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		require.NotNil(t, env.Error)
		assert.Contains(t, env.Error.Details, "type")
	})

	t.Run("overlap", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := leaveMock.NewMockService(ctrl)
		svc.EXPECT().Create(gomock.Any(), testActorID, gomock.Any()).
			Return(leave.LeaveResponse{}, audit.Entry{}, leaveerrors.ErrLeaveOverlap)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(`{"type":"other","start_date":"2026-05-04","end_date":"2026-05-05"}`))
		req.Header.Set("Content-Type", "application/json")
		setupLeaveRouter(svc, nil).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestLeaveHandler_GetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := leaveMock.NewMockService(ctrl)
	svc.EXPECT().
		GetAll(gomock.Any(), testActorID, leave.ListFilter{Status: "approved", Page: 2, PageSize: 5}).
		Return([]leave.LeaveResponse{{ID: "l-1"}}, int64(6), nil)

	w := httptest.NewRecorder()
	setupLeaveRouter(svc, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaves?status=Approved&page=2&page_size=5", nil))

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
	assert.JSONEq(t, `[{"id":"l-1","user_id":"","user_name":"","type":"","start_date":"","end_date":"","total_days":0,"reason":null,"status":"","notes":null,"created_at":""}]`, string(env.Data))
}

func TestLeaveHandler_UpdateStatus(t *testing.T) {
	t.Run("approve", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := leaveMock.NewMockService(ctrl)
		svc.EXPECT().UpdateStatus(gomock.Any(), testActorID, "l-1", gomock.Any()).
			DoAndReturn(func(ctx context.Context, actor, id string, req leave.UpdateStatusRequest) (leave.LeaveResponse, audit.Entry, error) {
				assert.Equal(t, "approved", req.Status)
				require.NotNil(t, req.Notes)
				return leave.LeaveResponse{ID: id, Status: req.Status}, audit.Entry{Action: "approved"}, nil
			})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/leaves/l-1/status", strings.NewReader(`{"status":"approved","notes":"ok"}`))
		req.Header.Set("Content-Type", "application/json")
		setupLeaveRouter(svc, nil).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not pending", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := leaveMock.NewMockService(ctrl)
		svc.EXPECT().UpdateStatus(gomock.Any(), testActorID, "l-1", gomock.Any()).
			Return(leave.LeaveResponse{}, audit.Entry{}, leaveerrors.ErrUpdateOnlyPending)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/leaves/l-1/status", strings.NewReader(`{"status":"rejected"}`))
		req.Header.Set("Content-Type", "application/json")
		setupLeaveRouter(svc, nil).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		require.NotNil(t, env.Error)
		assert.Equal(t, "Only pending leave requests can be updated.", env.Error.Message)
	})
}

func TestLeaveHandler_UpdateNotOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := leaveMock.NewMockService(ctrl)
	svc.EXPECT().Update(gomock.Any(), testActorID, "l-1", gomock.Any()).
		Return(leave.LeaveResponse{}, audit.Entry{}, leaveerrors.ErrNotOwner)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/leaves/l-1", strings.NewReader(`{"type":"sick","start_date":"2026-05-04","end_date":"2026-05-05"}`))
	req.Header.Set("Content-Type", "application/json")
	setupLeaveRouter(svc, nil).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLeaveHandler_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := leaveMock.NewMockService(ctrl)
	rec := &recordingAudit{}
	svc.EXPECT().Delete(gomock.Any(), testActorID, "l-1").Return(audit.Entry{Action: "deleted"}, nil)

	w := httptest.NewRecorder()
	setupLeaveRouter(svc, rec).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/leaves/l-1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Leave request deleted successfully.")
	assert.Len(t, rec.entries, 1)
}
