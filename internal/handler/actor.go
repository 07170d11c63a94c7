package handler

import (
	"github.com/gin-gonic/gin"

	"brokerdash/internal/model"
	"brokerdash/pkg/rbac"
)

// actorFrom reads the authenticated identity stored by the auth middleware.
func actorFrom(c *gin.Context) model.Actor {
	return model.Actor{
		UserID: c.GetString("user_id"),
		Role:   rbac.NormalizeRole(c.GetString("role")),
	}
}
