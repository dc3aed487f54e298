package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/chat-dashboard/internal/auth"
	"github.com/suPer8Hu/chat-dashboard/internal/common"
	"github.com/suPer8Hu/chat-dashboard/internal/httpapi/middleware"
	"github.com/suPer8Hu/chat-dashboard/internal/models"
)

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	User      models.SanitizedUser `json:"user"`
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expires_at"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, common.CodeInvalidJSON, "invalid json")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		common.Fail(c, http.StatusBadRequest, common.CodeMissingField, "username and password required")
		return
	}

	u, err := h.Auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, exp, err := auth.SignIdentity(*u, h.Cfg.JWTSecret, h.Cfg.SessionTTL)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, token, int(time.Until(exp).Seconds()), "/", "", h.Cfg.CookieSecure, true)

	h.logger.Info("login", "user_id", u.ID, "username", u.Username)
	common.OK(c, loginResp{User: *u, Token: token, ExpiresAt: exp})
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, "", -1, "/", "", h.Cfg.CookieSecure, true)
	common.OK(c, nil)
}

func (h *Handler) Me(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	common.OK(c, id)
}
