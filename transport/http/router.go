package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// SetupRouter sets up the Gin router
func SetupRouter(handlers *Handlers, log *logrus.Entry) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))

	router.GET("/api/health", handlers.Health)

	// Wallet login handshake
	auth := router.Group("/auth")
	{
		auth.GET("/message/:address", handlers.Message)
		auth.POST("/verify", handlers.Verify)
		auth.GET("/builder-approval", handlers.BuilderApproval)
	}

	// Bearer-forwarding call sites
	router.POST("/api/pro/execute", handlers.Execute)
	router.GET("/portfolio/positions", handlers.Positions)
	router.POST("/trade/close", handlers.Close)

	router.GET("/market/prices", handlers.Prices)

	return router
}

// WithCORS wraps h with a permissive CORS policy for the given origins.
func WithCORS(h http.Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(h)
}
