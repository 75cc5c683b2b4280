package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/wyr-platform/internal/auth"
	"github.com/suPer8Hu/wyr-platform/internal/common"
	"github.com/suPer8Hu/wyr-platform/internal/game"
	"github.com/suPer8Hu/wyr-platform/internal/httpapi/middleware"
)

// writeError maps a service error to its envelope. Anything unrecognised is
// logged and reported as a 500.
func writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, game.ErrThemeNotFound):
		common.Fail(c, http.StatusNotFound, 40401, "theme not found")
	case errors.Is(err, game.ErrQuestionNotFound):
		common.Fail(c, http.StatusNotFound, 40402, "question not found")
	case errors.Is(err, game.ErrNoQuestionsAvailable):
		common.Fail(c, http.StatusNotFound, 40403, "no questions available")
	case errors.Is(err, game.ErrJobNotFound):
		common.Fail(c, http.StatusNotFound, 40404, "job not found")
	case errors.Is(err, game.ErrInvalidSelection):
		common.Fail(c, http.StatusBadRequest, 40003, err.Error())
	case errors.Is(err, game.ErrValidation), errors.Is(err, auth.ErrValidation):
		common.Fail(c, http.StatusBadRequest, 40002, err.Error())
	case errors.Is(err, game.ErrConflict), errors.Is(err, auth.ErrConflict):
		common.Fail(c, http.StatusConflict, 40901, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		common.Fail(c, http.StatusUnauthorized, 40102, err.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
	case errors.Is(err, game.ErrGenerationFailed):
		log.Printf("[%s] generation failed request_id=%s err=%v", op, c.GetString(middleware.RequestIDKey), err)
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to generate question")
	default:
		log.Printf("[%s] failed request_id=%s err=%v", op, c.GetString(middleware.RequestIDKey), err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
	}
}

func invalidJSON(c *gin.Context) {
	common.Fail(c, http.StatusBadRequest, 40001, "invalid json")
}
