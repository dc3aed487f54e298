package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/chat-dashboard/internal/common"
	"github.com/suPer8Hu/chat-dashboard/internal/httpapi/middleware"
	"github.com/suPer8Hu/chat-dashboard/internal/users"
)

type resetPasswordReq struct {
	Password string `json:"password"`
}

func (h *Handler) ListUsers(c *gin.Context) {
	list, err := h.Users.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.OK(c, list)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req users.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, common.CodeInvalidJSON, "invalid json")
		return
	}
	u, err := h.Users.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code":    common.CodeOK,
		"message": "ok",
		"data":    u,
	})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	caller, _ := middleware.CurrentIdentity(c)
	if err := h.Users.Delete(c.Request.Context(), id, caller.ID); err != nil {
		h.respondError(c, err)
		return
	}
	common.OK(c, gin.H{"deleted": id})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req resetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, common.CodeInvalidJSON, "invalid json")
		return
	}
	caller, _ := middleware.CurrentIdentity(c)
	if err := h.Users.ResetPassword(c.Request.Context(), id, caller.ID, req.Password); err != nil {
		h.respondError(c, err)
		return
	}
	common.OK(c, gin.H{"success": true})
}

func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		common.Fail(c, http.StatusBadRequest, common.CodeInvalidID, "invalid user id")
		return 0, false
	}
	return id, true
}
