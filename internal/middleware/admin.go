package middleware

import (
	"net/http"

	"github.com/LabaLabaSunda/Attendance-system/internal/util"

	"github.com/gin-gonic/gin"
)

// RequireAdmin rejects non-admin users. Must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Belum login")
			c.Abort()
			return
		}
		if !user.IsAdmin {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "Akses ditolak! Hanya admin.")
			c.Abort()
			return
		}
		c.Next()
	}
}
