package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/schoolsync/lms-service/internal/models"
)

// performWithRole routes one request through the gate with the given role
// already resolved into the context, as the auth middleware would leave it.
func performWithRole(gate gin.HandlerFunc, role models.UserRole) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/guarded", func(c *gin.Context) {
		if role != "" {
			c.Set("user_role", role)
		}
	}, gate, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRequireRoleMiddleware(t *testing.T) {
	cam := &CasdoorAuthMiddleware{}
	gate := cam.RequireRoleMiddleware(models.RoleTeacher)

	t.Run("matching role passes", func(t *testing.T) {
		if w := performWithRole(gate, models.RoleTeacher); w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})

	t.Run("admin passes any gate", func(t *testing.T) {
		if w := performWithRole(gate, models.RoleAdmin); w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})

	t.Run("other role is rejected", func(t *testing.T) {
		if w := performWithRole(gate, models.RoleStudent); w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
	})
}

func TestRequireExactRoleMiddleware(t *testing.T) {
	cam := &CasdoorAuthMiddleware{}
	gate := cam.RequireExactRoleMiddleware(models.RoleStudent)

	t.Run("student passes", func(t *testing.T) {
		if w := performWithRole(gate, models.RoleStudent); w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})

	t.Run("admin does not bypass the attempt gate", func(t *testing.T) {
		if w := performWithRole(gate, models.RoleAdmin); w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
	})

	t.Run("teacher is rejected", func(t *testing.T) {
		if w := performWithRole(gate, models.RoleTeacher); w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
	})

	t.Run("missing role is rejected", func(t *testing.T) {
		if w := performWithRole(gate, ""); w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
	})
}
