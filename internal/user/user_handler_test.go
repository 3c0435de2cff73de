package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/faisallbhr/simple-hris/internal/middleware"
	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
	"github.com/faisallbhr/simple-hris/internal/shared/audit"
	"github.com/faisallbhr/simple-hris/internal/user"
	usererrors "github.com/faisallbhr/simple-hris/internal/user/errors"
	userMock "github.com/faisallbhr/simple-hris/internal/user/mock"

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

func decode(t *testing.T, body []byte) apiEnvelope {
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

func setupUserRouter(svc user.Service, auditLogger audit.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	apperror.Init()

	handler := user.NewHandler(svc, auditLogger)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDValidated, testActorID)
		c.Next()
	})
	r.GET("/users", handler.GetAll)
	r.GET("/users/options", handler.GetOptions)
	r.GET("/users/export", handler.Export)
	r.GET("/users/trash", handler.GetTrashed)
	r.GET("/users/:id", handler.GetById)
	r.POST("/users", handler.Create)
	r.POST("/users/import", handler.Import)
	r.PUT("/users/:id", handler.Update)
	r.DELETE("/users/:id", handler.Delete)
	r.POST("/users/trash/:id/restore", handler.Restore)
	r.DELETE("/users/trash/:id", handler.ForceDelete)
	return r
}

func TestHandler_GetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := userMock.NewMockService(ctrl)
	router := setupUserRouter(mockService, nil)

	t.Run("passes filters and paginates", func(t *testing.T) {
		mockService.EXPECT().
			GetAll(gomock.Any(), testActorID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, f user.ListFilter) ([]user.UserResponse, int64, error) {
				assert.Equal(t, "budi", f.Search)
				assert.Equal(t, "email", f.Sort)
				assert.Equal(t, "asc", f.Direction)
				assert.Equal(t, 2, f.Page)
				assert.Equal(t, 5, f.PageSize)
				require.NotNil(t, f.DateFrom)
				assert.Equal(t, "2026-01-01", f.DateFrom.Format("2006-01-02"))
				assert.False(t, f.Trashed)
				return []user.UserResponse{{ID: "u-1", Name: "Budi"}}, 11, nil
			})

		req := httptest.NewRequest(http.MethodGet, "/users?search=budi&sort=email&direction=ASC&page=2&page_size=5&date_from=2026-01-01", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decode(t, w.Body.Bytes())
		assert.True(t, env.Ok)

		var meta map[string]any
		require.NoError(t, json.Unmarshal(env.Meta, &meta))
		assert.EqualValues(t, 11, meta["total"])
		assert.EqualValues(t, 3, meta["totalPages"])
	})

	t.Run("bad date never reaches the service", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users?date_from=01-01-2026", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_GetTrashed(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := userMock.NewMockService(ctrl)
	router := setupUserRouter(mockService, nil)

	mockService.EXPECT().
		GetAll(gomock.Any(), testActorID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, f user.ListFilter) ([]user.UserResponse, int64, error) {
			assert.True(t, f.Trashed)
			return nil, 0, nil
		})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/trash", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_GetById(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := userMock.NewMockService(ctrl)
	router := setupUserRouter(mockService, nil)

	mockService.EXPECT().
		GetByID(gomock.Any(), "missing", false).
		Return(user.UserResponse{}, usererrors.ErrUserNotFound)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decode(t, w.Body.Bytes())
	require.NotNil(t, env.Error)
	assert.Equal(t, "User not found", env.Error.Message)
}

func TestHandler_GetOptions(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := userMock.NewMockService(ctrl)
	router := setupUserRouter(mockService, nil)

	mockService.EXPECT().
		GetOptions(gomock.Any(), "sit").
		Return([]user.OptionResponse{{ID: "u-2", Name: "Siti", Email: "siti@mail.com"}}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/options?query=sit", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var options []user.OptionResponse
	require.NoError(t, json.Unmarshal(decode(t, w.Body.Bytes()).Data, &options))
	require.Len(t, options, 1)
	assert.Equal(t, "Siti", options[0].Name)
}

func TestHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := userMock.NewMockService(ctrl)
		auditLog := &recordingAudit{}
		router := setupUserRouter(mockService, auditLog)

		mockService.EXPECT().
			Create(gomock.Any(), testActorID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, req user.CreateUserRequest) (user.UserResponse, audit.Entry, error) {
				assert.Equal(t, []string{"hr"}, req.Roles)
				return user.UserResponse{ID: "u-3", Name: req.Name, Email: req.Email}, audit.Entry{Action: "created", Subject: "user"}, nil
			})

		body := `{"name":"Andi","email":"andi@mail.com","password":"secret123","password_confirmation":"secret123","roles":["hr"]}`
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		require.Len(t, auditLog.entries, 1)
		assert.Equal(t, "created", auditLog.entries[0].Action)
	})

	t.Run("validation errors", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		router := setupUserRouter(userMock.NewMockService(ctrl), nil)

		body := `{"name":"","email":"not-an-email","password":"secret123","password_confirmation":"different","roles":["hr"]}`
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decode(t, w.Body.Bytes())
		require.NotNil(t, env.Error)
		assert.Contains(t, env.Error.Details, "name")
		assert.Contains(t, env.Error.Details, "email")
		assert.Contains(t, env.Error.Details, "password_confirmation")
	})

	t.Run("email taken", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := userMock.NewMockService(ctrl)
		router := setupUserRouter(mockService, nil)

		mockService.EXPECT().
			Create(gomock.Any(), testActorID, gomock.Any()).
			Return(user.UserResponse{}, audit.Entry{}, usererrors.ErrEmailTaken)

		body := `{"name":"Andi","email":"andi@mail.com","password":"secret123","password_confirmation":"secret123","roles":["hr"]}`
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHandler_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := userMock.NewMockService(ctrl)
	router := setupUserRouter(mockService, nil)

	mockService.EXPECT().
		Update(gomock.Any(), testActorID, "u-4", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, req user.UpdateUserRequest) (user.UserResponse, audit.Entry, error) {
			assert.Nil(t, req.Roles)
			return user.UserResponse{}, audit.Entry{}, usererrors.ErrSelfManager
		})

	body := `{"name":"Dewi","email":"dewi@mail.com","manager_id":"22222222-2222-2222-2222-222222222222"}`
	req := httptest.NewRequest(http.MethodPut, "/users/u-4", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Lifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := userMock.NewMockService(ctrl)
	auditLog := &recordingAudit{}
	router := setupUserRouter(mockService, auditLog)

	mockService.EXPECT().
		Delete(gomock.Any(), testActorID, testActorID).
		Return(audit.Entry{}, usererrors.ErrCannotDeleteSelf)
	mockService.EXPECT().
		Restore(gomock.Any(), testActorID, "u-5").
		Return(user.UserResponse{ID: "u-5"}, audit.Entry{Action: "restored"}, nil)
	mockService.EXPECT().
		ForceDelete(gomock.Any(), testActorID, "u-6").
		Return(audit.Entry{Action: "force_deleted"}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/"+testActorID, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/users/trash/u-5/restore", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/trash/u-6", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	require.Len(t, auditLog.entries, 2)
	assert.Equal(t, "restored", auditLog.entries[0].Action)
	assert.Equal(t, "force_deleted", auditLog.entries[1].Action)
}

func TestHandler_Export(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := userMock.NewMockService(ctrl)
	router := setupUserRouter(mockService, nil)

	mockService.EXPECT().
		Export(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req user.ExportRequest) (user.FileDownload, error) {
			assert.Equal(t, "csv", req.Format)
			assert.Equal(t, []string{"name", "email"}, req.Columns)
			return user.FileDownload{FileName: "export_users_2026_01_02_03_04_05.csv", ContentType: "text/csv", Content: []byte("Name,Email\n")}, nil
		})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/export?format=csv&columns=name,email", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "export_users_2026_01_02_03_04_05.csv")
}

func TestHandler_Import(t *testing.T) {
	t.Run("queued", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := userMock.NewMockService(ctrl)
		auditLog := &recordingAudit{}
		router := setupUserRouter(mockService, auditLog)

		mockService.EXPECT().
			RequestImport(gomock.Any(), testActorID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, file user.ImportFile) (audit.Entry, error) {
				assert.Equal(t, "users.csv", file.FileName)
				assert.Equal(t, "name,email\n", string(file.Content))
				return audit.Entry{Action: "imported"}, nil
			})

		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		part, err := mw.CreateFormFile("file", "users.csv")
		require.NoError(t, err)
		_, _ = part.Write([]byte("name,email\n"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/users/import", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		var data map[string]string
		require.NoError(t, json.Unmarshal(decode(t, w.Body.Bytes()).Data, &data))
		assert.Equal(t, user.ImportQueuedMessage, data["message"])
		require.Len(t, auditLog.entries, 1)
	})

	t.Run("missing file", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		router := setupUserRouter(userMock.NewMockService(ctrl), nil)

		req := httptest.NewRequest(http.MethodPost, "/users/import", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w.Body.Bytes())
		require.NotNil(t, env.Error)
		assert.Equal(t, "The file field is required.", env.Error.Message)
	})
}
