package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"forestpest/auth/internal/models"
)

func (h HandlerSet) AdminTerminateUserSessions(c *gin.Context) {
	userID := c.Param("id")

	n, err := h.auth.TerminateAllUserSessions(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "terminated": n})
}

type userStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminSetUserStatus enables or disables an account. Disabling it also ends
// every session the user holds.
func (h HandlerSet) AdminSetUserStatus(c *gin.Context) {
	userID := c.Param("id")

	var req userStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	status := models.UserStatus(strings.ToUpper(req.Status))

	revoked, err := h.auth.SetUserStatus(c.Request.Context(), userID, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "status": status, "sessionsRevoked": revoked})
}

// terminateSessionRequest names a session by its raw id or by the
// fingerprint that session listings show.
type terminateSessionRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

func (h HandlerSet) AdminTerminateSession(c *gin.Context) {
	var req terminateSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	found, err := h.auth.TerminateSession(c.Request.Context(), req.SessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) AdminRoles(c *gin.Context) {
	roles := h.auth.Roles()
	out := make([]gin.H, 0, len(roles))
	for _, role := range roles {
		out = append(out, gin.H{"role": role, "permissions": h.auth.PermissionsForRole(role)})
	}
	c.JSON(http.StatusOK, gin.H{"roles": out})
}

func (h HandlerSet) AdminRolePermissions(c *gin.Context) {
	role := strings.ToUpper(c.Param("role"))
	if !h.auth.IsValidRole(role) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown role"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"role":        role,
		"permissions": h.auth.PermissionsForRole(role),
	})
}
