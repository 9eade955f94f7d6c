package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sturmfeder/guild-portal/internal/dto"
	"github.com/sturmfeder/guild-portal/internal/utils"
)

// SessionCookieName is the cookie carrying the member session token
const SessionCookieName = "member_token"

// MemberAuthMiddleware validates the session cookie and adds the linked
// account's identity to the request context
func MemberAuthMiddleware(sessions *utils.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Session cookie is required",
			})
			c.Abort()
			return
		}

		claims, err := sessions.ValidateMemberToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid or expired session",
			})
			c.Abort()
			return
		}

		c.Set("account_id", claims.AccountID)
		c.Set("battletag", claims.BattleTag)
		c.Set("claims", claims)

		c.Next()
	}
}

// accountID extracts the authenticated account id set by the middleware
func accountID(c *gin.Context) (string, bool) {
	id, exists := c.Get("account_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Account ID not found in context",
		})
		return "", false
	}
	return id.(string), true
}
