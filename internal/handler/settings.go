package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/valentinpelus/survey-crm/internal/middleware"
	"github.com/valentinpelus/survey-crm/pkg/access"
	"github.com/valentinpelus/survey-crm/pkg/audit"
	"github.com/valentinpelus/survey-crm/pkg/types"
)

// GetSettings returns the settings, creating the defaults on first use
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings.Redacted())
}

// SaveSettings replaces the settings document. Blank passwords keep the stored hashes.
func (h *Handler) SaveSettings(c *gin.Context) {
	var in types.Settings
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid settings: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	previous, err := h.settings.Get(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	prepared, err := access.PrepareSettings(in, &previous)
	if err != nil {
		respondError(c, err)
		return
	}
	saved, err := h.settings.Save(ctx, prepared)
	if err != nil {
		respondError(c, err)
		return
	}

	h.record(c, audit.Entry{
		Action:  audit.ActionSettingsSaved,
		Actor:   middleware.Actor(c),
		Details: map[string]interface{}{"users": len(saved.Users), "questions": len(saved.Questions), "mode": saved.TranscriptionMode},
	})
	c.JSON(http.StatusOK, gin.H{"message": "Settings saved", "settings": saved.Redacted()})
}

// ResetSettings restores the default settings
func (h *Handler) ResetSettings(c *gin.Context) {
	settings, err := h.settings.Reset(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	h.record(c, audit.Entry{Action: audit.ActionSettingsReset, Actor: middleware.Actor(c)})
	c.JSON(http.StatusOK, gin.H{"message": "Settings reset", "settings": settings.Redacted()})
}

type passwordRequest struct {
	TargetUserID    string `json:"targetUserId" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	CurrentUsername string `json:"currentUsername"`
}

// UpdatePassword sets a user's password when the management hierarchy allows it. With tokens
// enabled the caller is taken from the token, and only admin tokens may change another user.
func (h *Handler) UpdatePassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "targetUserId, newPassword and currentUsername are required")
		return
	}

	current := req.CurrentUsername
	if h.issuer.Enabled() {
		claims, ok := middleware.ClaimsFrom(c)
		if !ok || claims.Username == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: sign in as a user"})
			return
		}
		if claims.Subject != req.TargetUserID && !claims.IsAdmin() {
			respondError(c, access.ErrPermissionDenied)
			return
		}
		current = claims.Username
	}
	if current == "" {
		badRequest(c, "targetUserId, newPassword and currentUsername are required")
		return
	}

	ctx := c.Request.Context()
	settings, err := h.settings.Get(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.access.SetPassword(&settings, req.TargetUserID, req.NewPassword, current); err != nil {
		log.Warn().Err(err).Str("current", current).Str("target", req.TargetUserID).Msg("Password change refused")
		respondError(c, err)
		return
	}
	if _, err := h.settings.Save(ctx, settings); err != nil {
		respondError(c, err)
		return
	}

	h.record(c, audit.Entry{Action: audit.ActionPasswordChanged, Actor: current, Target: req.TargetUserID})
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks user credentials and issues a token when tokens are enabled
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" {
		badRequest(c, "username is required")
		return
	}

	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	user, err := access.Login(&settings, req.Username, req.Password)
	if err != nil {
		log.Info().Str("username", req.Username).Msg("Login failed")
		respondError(c, err)
		return
	}

	safe := *user
	safe.Password = ""
	resp := gin.H{"user": safe}
	if h.issuer.Enabled() {
		token, err := h.issuer.Issue(access.Claims{Subject: user.ID, Username: user.Username, Role: access.TokenRole(*user)})
		if err != nil {
			respondError(c, err)
			return
		}
		resp["token"] = token
	}
	c.JSON(http.StatusOK, resp)
}

// DeveloperLogin checks the developer panel password
func (h *Handler) DeveloperLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "password is required")
		return
	}

	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if err := access.DeveloperLogin(&settings, req.Password); err != nil {
		log.Warn().Str("client", c.ClientIP()).Msg("Developer login failed")
		respondError(c, err)
		return
	}

	resp := gin.H{"message": "ok"}
	if h.issuer.Enabled() {
		token, err := h.issuer.Issue(access.Claims{Subject: access.RoleDeveloper, Role: access.RoleDeveloper})
		if err != nil {
			respondError(c, err)
			return
		}
		resp["token"] = token
	}
	c.JSON(http.StatusOK, resp)
}
