package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"highpurchase/config"
	"highpurchase/models"
	"highpurchase/utils"
)

// StaffAuth verifies the bearer token and loads the staff row behind
// it. Downstream handlers read "staff" and "business_id" from the
// context. Deactivated accounts are cut off even while their tokens
// are still unexpired.
func StaffAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.VerifyToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		rawID, ok := claims["staff_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		var staff models.Staff
		if err := config.DB.First(&staff, uint(rawID)).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
			c.Abort()
			return
		}
		if !staff.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "account is deactivated"})
			c.Abort()
			return
		}

		c.Set("staff", &staff)
		c.Set("staff_id", staff.ID)
		c.Set("business_id", staff.BusinessID)
		c.Next()
	}
}

// HasPerm reports whether a staff member holds one permission code.
// Handlers use it for grants that depend on the request body rather
// than the route.
func HasPerm(staffID uint, code string) bool {
	var cnt int64
	config.DB.Model(&models.StaffPermission{}).
		Joins("JOIN permissions ON permissions.id = staff_permissions.permission_id").
		Where("staff_permissions.staff_id = ? AND permissions.code = ?", staffID, code).
		Count(&cnt)
	return cnt > 0
}

// RequirePerm gates a route on one permission code. Grants are
// per-staff rows joined against the seeded catalogue; owners receive
// every grant at registration.
func RequirePerm(code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		staffID := c.GetUint("staff_id")
		if staffID == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			c.Abort()
			return
		}
		if !HasPerm(staffID, code) {
			c.JSON(http.StatusForbidden, gin.H{"error": "missing permission " + code})
			c.Abort()
			return
		}
		c.Next()
	}
}
