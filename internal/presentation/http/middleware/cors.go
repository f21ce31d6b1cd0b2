package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mycomize/mycomize-go/pkg/config"
)

// CORSMiddleware provides the CORS configuration for browser and mobile
// clients. Origins come from configuration so deployments can add their own.
func CORSMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins: config.AllowedOrigins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			"X-Requested-With", "Cache-Control", "Stripe-Signature",
		},
		AllowCredentials: true,
		ExposeHeaders: []string{
			"Content-Type", "Cache-Control", "Connection",
		},
	}

	return cors.New(cfg)
}
