package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/wyr-platform/internal/auth"
	"github.com/suPer8Hu/wyr-platform/internal/common"
	"github.com/suPer8Hu/wyr-platform/internal/game"
)

// JobPublisher enqueues generation jobs for the worker.
type JobPublisher interface {
	PublishJob(ctx context.Context, jobID string) error
}

type Handler struct {
	Game *game.Service
	Auth *auth.Service
	// Rabbit is nil when async generation is disabled.
	Rabbit JobPublisher
}

func NewHandler(gameSvc *game.Service, authSvc *auth.Service, rabbit JobPublisher) *Handler {
	return &Handler{Game: gameSvc, Auth: authSvc, Rabbit: rabbit}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
