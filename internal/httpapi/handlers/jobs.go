package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/wyr-platform/internal/common"
	"github.com/suPer8Hu/wyr-platform/internal/httpapi/middleware"
)

func (h *Handler) GenerateQuestionAsync(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	if h.Rabbit == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50301, "async generation is not enabled")
		return
	}
	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 40007, "theme_id required")
		return
	}

	idempoKey := c.GetHeader("Idempotency-Key")
	j, created, err := h.Game.CreateGenerationJob(c.Request.Context(), uid, req.ThemeID, idempoKey)
	if err != nil {
		writeError(c, "GenerateQuestionAsync", err)
		return
	}

	// Enqueue only when a new job was created
	if created {
		if err := h.Rabbit.PublishJob(c.Request.Context(), j.ID); err != nil {
			log.Printf("[GenerateQuestionAsync] PublishJob failed uid=%d theme_id=%d job_id=%s err=%v", uid, req.ThemeID, j.ID, err)
			if ferr := h.Game.FailJob(c.Request.Context(), j.ID, "enqueue failed"); ferr != nil {
				log.Printf("[GenerateQuestionAsync] FailJob failed job_id=%s err=%v", j.ID, ferr)
			}
			common.Fail(c, http.StatusInternalServerError, 50003, "enqueue failed")
			return
		}
	}

	common.Accepted(c, gin.H{"job_id": j.ID})
}

func (h *Handler) GetJob(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	j, err := h.Game.GetJob(c.Request.Context(), uid, c.Param("job_id"))
	if err != nil {
		writeError(c, "GetJob", err)
		return
	}
	common.OK(c, gin.H{"job": j})
}
