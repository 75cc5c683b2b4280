package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/wyr-platform/internal/common"
	"github.com/suPer8Hu/wyr-platform/internal/httpapi/handlers"
	"github.com/suPer8Hu/wyr-platform/internal/httpapi/middleware"
)

// NewRouter wires the API. An empty corsOrigins allows any origin.
func NewRouter(h *handlers.Handler, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID())
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(cors.New(corsConfig(corsOrigins)))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)

	// auth
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	authRequired := middleware.AuthRequired(h.Auth)
	r.POST("/auth/logout", authRequired, h.Logout)
	r.GET("/auth/me", authRequired, h.Me)

	// game: identity optional
	g := r.Group("/")
	g.Use(middleware.AuthOptional(h.Auth))
	g.GET("/themes", h.ListThemes)
	g.GET("/questions/random", h.GetRandomQuestion)
	g.GET("/questions/:theme_id", h.GetQuestion)
	g.POST("/responses", h.SubmitResponse)
	g.GET("/stats/:question_id", h.GetStats)
	g.POST("/generate-question", h.GenerateQuestion)

	// identity required
	authGroup := r.Group("/")
	authGroup.Use(authRequired)
	authGroup.POST("/themes", h.CreateTheme)
	authGroup.POST("/generate-question/async", h.GenerateQuestionAsync)
	authGroup.GET("/jobs/:job_id", h.GetJob)
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", "Idempotency-Key", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
