package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS lets the mini app call the API from the Telegram WebApp origin. It must
// be installed on the engine so preflight requests are answered before
// routing.
func CORS() gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{http.MethodHead, http.MethodGet}
	config.AllowHeaders = []string{"Authorization", "Content-Type"}
	config.MaxAge = 12 * time.Hour

	return cors.New(config)
}
