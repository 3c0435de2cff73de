package rbac

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/faisallbhr/simple-hris/internal/domain"
	rbacerrors "github.com/faisallbhr/simple-hris/internal/rbac/errors"
	"github.com/faisallbhr/simple-hris/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	Service
	enforceFn    func(ctx context.Context, req domain.EnforceRequest) (bool, error)
	createRoleFn func(ctx context.Context, req CreateRoleRequest) (RoleResponse, error)
	deleteRoleFn func(ctx context.Context, id string) error
}

func (f *fakeService) Enforce(ctx context.Context, req domain.EnforceRequest) (bool, error) {
	return f.enforceFn(ctx, req)
}

func (f *fakeService) CreateRole(ctx context.Context, req CreateRoleRequest) (RoleResponse, error) {
	return f.createRoleFn(ctx, req)
}

func (f *fakeService) DeleteRole(ctx context.Context, id string) error {
	return f.deleteRoleFn(ctx, id)
}

func performJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Enforce(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{enforceFn: func(_ context.Context, req domain.EnforceRequest) (bool, error) {
		return req.Permission == PermViewUsers, nil
	}}
	router := gin.New()
	router.POST("/rbac/enforce", NewHandler(svc).Enforce)

	w := performJSON(router, http.MethodPost, "/rbac/enforce", domain.EnforceRequest{
		UserID:     "7f1f5a1e-8d5c-4c55-9d4c-1f4fbd0c3b11",
		Permission: " view_users ",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Ok   bool                   `json:"ok"`
		Data domain.EnforceResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Ok)
	assert.True(t, env.Data.Allowed)
}

func TestHandler_Enforce_ValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/rbac/enforce", NewHandler(&fakeService{}).Enforce)

	w := performJSON(router, http.MethodPost, "/rbac/enforce", map[string]string{"user_id": "nope"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_CreateRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{createRoleFn: func(_ context.Context, req CreateRoleRequest) (RoleResponse, error) {
		if req.Name == "hr" {
			return RoleResponse{}, rbacerrors.ErrRoleNameTaken
		}
		return RoleResponse{ID: "role-1", Name: req.Name, Permissions: req.Permissions}, nil
	}}
	router := gin.New()
	router.POST("/roles", NewHandler(svc).CreateRole)

	w := performJSON(router, http.MethodPost, "/roles", CreateRoleRequest{Name: "auditor", Permissions: []string{PermViewUsers}})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = performJSON(router, http.MethodPost, "/roles", CreateRoleRequest{Name: "hr"})
	assert.Equal(t, http.StatusConflict, w.Code)

	var env response.ApiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "CONFLICT", env.Error.(map[string]any)["code"])
}

func TestHandler_DeleteRole_Protected(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{deleteRoleFn: func(context.Context, string) error {
		return rbacerrors.ErrProtectedRole
	}}
	router := gin.New()
	router.DELETE("/roles/:id", NewHandler(svc).DeleteRole)

	w := performJSON(router, http.MethodDelete, "/roles/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
