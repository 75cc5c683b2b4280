package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/wyr-platform/internal/common"
	"github.com/suPer8Hu/wyr-platform/internal/httpapi/middleware"
)

func callerPtr(c *gin.Context) *uint64 {
	uid, ok := middleware.UserID(c)
	if !ok {
		return nil
	}
	return &uid
}

func (h *Handler) ListThemes(c *gin.Context) {
	themes, err := h.Game.ListThemes(c.Request.Context(), callerPtr(c))
	if err != nil {
		writeError(c, "ListThemes", err)
		return
	}
	common.OK(c, themes)
}

type createThemeReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"is_public"`
}

func (h *Handler) CreateTheme(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	var req createThemeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}
	public := true
	if req.IsPublic != nil {
		public = *req.IsPublic
	}

	t, err := h.Game.CreateTheme(c.Request.Context(), uid, req.Name, req.Description, public)
	if err != nil {
		writeError(c, "CreateTheme", err)
		return
	}
	common.OK(c, t)
}

func (h *Handler) GetQuestion(c *gin.Context) {
	themeID, ok := parseID(c, "theme_id")
	if !ok {
		common.Fail(c, http.StatusBadRequest, 40004, "invalid theme id")
		return
	}
	q, err := h.Game.ResolveForTheme(c.Request.Context(), themeID)
	if err != nil {
		writeError(c, "GetQuestion", err)
		return
	}
	common.OK(c, q)
}

func (h *Handler) GetRandomQuestion(c *gin.Context) {
	q, err := h.Game.ResolveRandom(c.Request.Context())
	if err != nil {
		writeError(c, "GetRandomQuestion", err)
		return
	}
	common.OK(c, q)
}

type submitResponseReq struct {
	QuestionID     uint64 `json:"question_id" binding:"required"`
	SelectedOption string `json:"selected_option" binding:"required"`
	SessionID      string `json:"session_id"`
}

func (h *Handler) SubmitResponse(c *gin.Context) {
	var req submitResponseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 40005, "question_id and selected_option required")
		return
	}
	sid, err := h.Game.RecordResponse(c.Request.Context(), req.QuestionID, req.SelectedOption, req.SessionID, callerPtr(c))
	if err != nil {
		writeError(c, "SubmitResponse", err)
		return
	}
	common.OK(c, gin.H{"success": true, "session_id": sid})
}

func (h *Handler) GetStats(c *gin.Context) {
	qid, ok := parseID(c, "question_id")
	if !ok {
		common.Fail(c, http.StatusBadRequest, 40006, "invalid question id")
		return
	}
	st, err := h.Game.Stats(c.Request.Context(), qid)
	if err != nil {
		writeError(c, "GetStats", err)
		return
	}
	common.OK(c, st)
}

type generateReq struct {
	ThemeID uint64 `json:"theme_id" binding:"required"`
}

func (h *Handler) GenerateQuestion(c *gin.Context) {
	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 40007, "theme_id required")
		return
	}
	q, err := h.Game.GenerateForTheme(c.Request.Context(), req.ThemeID)
	if err != nil {
		writeError(c, "GenerateQuestion", err)
		return
	}
	common.OK(c, gin.H{
		"success":     true,
		"question_id": q.ID,
		"option_a":    q.OptionA,
		"option_b":    q.OptionB,
	})
}
