package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"forestpest/auth/internal/middleware"
	"forestpest/auth/internal/models"
	"forestpest/auth/internal/security"
	"forestpest/auth/internal/service"
)

type userResponse struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	RealName string  `json:"realName"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	Avatar   *string `json:"avatar,omitempty"`
}

func newUserResponse(u models.UserSummary) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		RealName: u.RealName,
		Email:    u.Email,
		Role:     string(u.Role),
		Avatar:   u.Avatar,
	}
}

type authResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	TokenType    string       `json:"tokenType"`
	ExpiresIn    int64        `json:"expiresIn"`
	LoginAt      time.Time    `json:"loginAt"`
	User         userResponse `json:"user"`
}

func sendAuthResponse(c *gin.Context, result service.LoginResult) {
	c.JSON(http.StatusOK, authResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(result.ExpiresIn / time.Second),
		LoginAt:      result.LoginAt,
		User:         newUserResponse(result.User),
	})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	sendAuthResponse(c, result)
}

func (h HandlerSet) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.BearerToken(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (h HandlerSet) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}

	sendAuthResponse(c, result)
}

func (h HandlerSet) Validate(c *gin.Context) {
	info, ok := h.auth.TokenInfo(c.Request.Context(), middleware.BearerToken(c))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":        true,
		"userId":       info.UserID,
		"username":     info.Username,
		"role":         info.Role,
		"remainingMs":  info.Remaining.Milliseconds(),
		"expiringSoon": info.ExpiringSoon,
	})
}

// TokenStatus lets a client decide when to refresh without decoding the
// token itself.
func (h HandlerSet) TokenStatus(c *gin.Context) {
	info, ok := h.auth.TokenInfo(c.Request.Context(), middleware.BearerToken(c))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"valid": false, "remainingMs": 0, "expiringSoon": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":        true,
		"remainingMs":  info.Remaining.Milliseconds(),
		"expiringSoon": info.ExpiringSoon,
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h HandlerSet) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.auth.InitiatePasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

type resetTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h HandlerSet) ValidateResetToken(c *gin.Context) {
	var req resetTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": h.auth.ValidatePasswordResetToken(c.Request.Context(), req.Token)})
}

type resetPasswordRequest struct {
	ResetToken      string `json:"resetToken" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.ResetToken, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) Me(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	user, ok := h.auth.GetUserFromToken(c.Request.Context(), id.Token)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        newUserResponse(user.Summary()),
		"lastLoginAt": user.LastLoginAt,
		"permissions": h.auth.PermissionsForRole(string(user.Role)),
	})
}

type sessionResponse struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	LastAccessAt time.Time `json:"lastAccessAt"`
	Current      bool      `json:"current"`
}

// ListSessions identifies sessions by token fingerprint so other sessions'
// tokens are never handed out.
func (h HandlerSet) ListSessions(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	sessions, err := h.auth.GetUserActiveSessions(c.Request.Context(), id.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, sessionResponse{
			ID:           security.Fingerprint(s.ID),
			CreatedAt:    s.CreatedAt,
			LastAccessAt: s.LastAccessAt,
			Current:      s.ID == id.Token,
		})
	}

	c.JSON(http.StatusOK, gin.H{"sessions": resp})
}

func (h HandlerSet) TerminateOwnSessions(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	n, err := h.auth.TerminateAllUserSessions(c.Request.Context(), id.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"terminated": n})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// TerminateOwnSession ends one of the caller's sessions. The id is the
// fingerprint returned by ListSessions.
func (h HandlerSet) TerminateOwnSession(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	found, err := h.auth.TerminateUserSession(c.Request.Context(), id.UserID, c.Param("id"))
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

func (h HandlerSet) GetSessionInfo(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	info, ok, err := h.auth.SessionInfo(c.Request.Context(), id.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no session info"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"info": info})
}

type sessionInfoRequest struct {
	Info string `json:"info" binding:"required,max=512"`
}

func (h HandlerSet) PutSessionInfo(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	var req sessionInfoRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.auth.SetSessionInfo(c.Request.Context(), id.UserID, req.Info); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) DeleteSessionInfo(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	if err := h.auth.ClearSessionInfo(c.Request.Context(), id.UserID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) ChangePassword(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), id.UserID, req.OldPassword, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) Permissions(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	c.JSON(http.StatusOK, gin.H{
		"role":        id.Role,
		"permissions": h.auth.PermissionsForRole(string(id.Role)),
		"actions":     h.auth.ActionsForRole(string(id.Role)),
	})
}

type permissionCheckQuery struct {
	Resource string `form:"resource" binding:"required"`
	Action   string `form:"action" binding:"required"`
}

func (h HandlerSet) CheckPermission(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	var q permissionCheckQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"resource": q.Resource,
		"action":   q.Action,
		"allowed":  h.auth.CanPerformAction(c.Request.Context(), id.UserID, q.Resource, q.Action),
	})
}
