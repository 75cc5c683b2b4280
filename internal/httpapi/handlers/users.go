package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/wyr-platform/internal/common"
	"github.com/suPer8Hu/wyr-platform/internal/httpapi/middleware"
	"github.com/suPer8Hu/wyr-platform/internal/models"
)

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func userJSON(u *models.User) gin.H {
	return gin.H{"id": u.ID, "username": u.Username, "email": u.Email}
}

func (h *Handler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}
	user, token, err := h.Auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(c, "Register", err)
		return
	}
	common.OK(c, gin.H{"token": token, "user": userJSON(user)})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}
	user, token, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, "Login", err)
		return
	}
	common.OK(c, gin.H{"token": token, "user": userJSON(user)})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), c.GetString(middleware.TokenKey)); err != nil {
		writeError(c, "Logout", err)
		return
	}
	common.OK(c, gin.H{"success": true})
}

func (h *Handler) Me(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	user, err := h.Auth.GetUser(c.Request.Context(), uid)
	if err != nil {
		writeError(c, "Me", err)
		return
	}
	common.OK(c, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	})
}
