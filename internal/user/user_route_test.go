package user_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/faisallbhr/simple-hris/internal/domain"
	"github.com/faisallbhr/simple-hris/internal/rbac"
	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
	"github.com/faisallbhr/simple-hris/internal/shared/token"
	"github.com/faisallbhr/simple-hris/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// denyingRBAC records the permission each route asks for and refuses it, so
// no handler runs.
type denyingRBAC struct {
	rbac.Service
	asked []string
}

func (d *denyingRBAC) Enforce(_ context.Context, req domain.EnforceRequest) (bool, error) {
	d.asked = append(d.asked, req.Permission)
	return false, nil
}

func TestRegisterRoutes_TrashPermissions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	apperror.Init()
	token.SetSecret("route-secret")
	defer token.SetSecret("")

	access, err := token.Issue(testActorID, token.TypeAccess, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/users/trash", rbac.PermViewUsersTrash},
		{http.MethodGet, "/users/trash/" + testActorID, rbac.PermViewUsersTrash},
		{http.MethodPost, "/users/trash/" + testActorID + "/restore", rbac.PermRestoreUsers},
		{http.MethodDelete, "/users/trash/" + testActorID, rbac.PermDeleteUsersTrash},
		{http.MethodDelete, "/users/" + testActorID, rbac.PermDeleteUsers},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			authz := &denyingRBAC{}
			r := gin.New()
			user.RegisterRoutes(r.Group(""), user.NewHandler(nil, nil), authz)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+access)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Equal(t, []string{tt.want}, authz.asked)
		})
	}
}
